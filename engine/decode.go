package engine

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/rdk/rimage"
)

// FrameDecoder turns raw transport image bytes into decoded frames. It is
// the image-handling collaborator of the wrapper; color-space handling and
// format support live behind it.
type FrameDecoder interface {
	DecodeColor(ctx context.Context, raw []byte, mimeType string) (*rimage.Image, error)
	DecodeDepth(ctx context.Context, raw []byte, mimeType string) (*rimage.DepthMap, error)
}

// NewFrameDecoder returns the default decoder, backed by rimage.
func NewFrameDecoder() FrameDecoder {
	return &rimageDecoder{}
}

type rimageDecoder struct{}

func (d *rimageDecoder) DecodeColor(ctx context.Context, raw []byte, mimeType string) (*rimage.Image, error) {
	img, err := rimage.DecodeImage(ctx, raw, mimeType)
	if err != nil {
		return nil, err
	}
	return rimage.ConvertImage(img), nil
}

func (d *rimageDecoder) DecodeDepth(ctx context.Context, raw []byte, mimeType string) (*rimage.DepthMap, error) {
	img, err := rimage.DecodeImage(ctx, raw, mimeType)
	if err != nil {
		return nil, err
	}
	dm, err := rimage.ConvertImageToDepthMap(ctx, img)
	if err != nil {
		return nil, errors.Wrap(err, "decoded depth image is not a depth map")
	}
	return dm, nil
}
