package fake

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/rdk/rimage"

	"go.viam.com/slam-atlas/engine"
)

var _ engine.FrameDecoder = (*Decoder)(nil)

// Decoder is a frame decoder that returns fixed-size empty frames, with
// switchable failures for exercising the decode error path.
type Decoder struct {
	FailColor bool
	FailDepth bool
}

// DecodeColor returns an empty color image, or fails if FailColor is set.
func (d *Decoder) DecodeColor(ctx context.Context, raw []byte, mimeType string) (*rimage.Image, error) {
	if d.FailColor {
		return nil, errors.New("fake color decode failure")
	}
	return rimage.NewImage(4, 4), nil
}

// DecodeDepth returns an empty depth map, or fails if FailDepth is set.
func (d *Decoder) DecodeDepth(ctx context.Context, raw []byte, mimeType string) (*rimage.DepthMap, error) {
	if d.FailDepth {
		return nil, errors.New("fake depth decode failure")
	}
	return rimage.NewEmptyDepthMap(4, 4), nil
}
