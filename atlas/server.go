package atlas

import (
	"bytes"
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	pb "go.viam.com/api/service/slam/v1"
	"google.golang.org/grpc"

	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"
)

// Chunk size for streamed point cloud maps.
const pointCloudChunkSizeBytes = 64 * 1024

// serviceServer exposes the wrapper's query boundary over the slam gRPC API.
// GetInternalState stays unimplemented: engine-internal state is not owned
// by this wrapper.
type serviceServer struct {
	pb.UnimplementedSLAMServiceServer
	wrapper *Wrapper
	logger  golog.Logger
}

// NewServer constructs a slam service server over the wrapper.
func NewServer(w *Wrapper, logger golog.Logger) pb.SLAMServiceServer {
	return &serviceServer{wrapper: w, logger: logger}
}

// RegisterServer registers the wrapper's query boundary with a gRPC server.
func RegisterServer(s *grpc.Server, w *Wrapper, logger golog.Logger) {
	pb.RegisterSLAMServiceServer(s, NewServer(w, logger))
}

// GetPosition returns the robot's current world-frame pose.
func (server *serviceServer) GetPosition(ctx context.Context, req *pb.GetPositionRequest) (
	*pb.GetPositionResponse, error,
) {
	ctx, span := trace.StartSpan(ctx, "atlas::server::GetPosition")
	defer span.End()

	pif, err := server.wrapper.Position(ctx)
	if err != nil {
		return nil, err
	}
	return &pb.GetPositionResponse{
		Pose:               spatialmath.PoseToProtobuf(pif.Pose()),
		ComponentReference: pif.Parent(),
	}, nil
}

// GetPointCloudMap streams the current map's world-frame points in PCD
// format as byte chunks.
func (server *serviceServer) GetPointCloudMap(req *pb.GetPointCloudMapRequest,
	stream pb.SLAMService_GetPointCloudMapServer,
) error {
	ctx, span := trace.StartSpan(stream.Context(), "atlas::server::GetPointCloudMap")
	defer span.End()

	cloud, err := server.wrapper.CurrentMapPoints(ctx)
	if err != nil {
		return errors.Wrap(err, "assembling current map points")
	}

	var buf bytes.Buffer
	if err := pointcloud.ToPCD(cloud, &buf, pointcloud.PCDBinary); err != nil {
		return errors.Wrap(err, "encoding point cloud map")
	}

	for buf.Len() > 0 {
		chunk := &pb.GetPointCloudMapResponse{PointCloudPcdChunk: buf.Next(pointCloudChunkSizeBytes)}
		if err := stream.Send(chunk); err != nil {
			return err
		}
	}
	return nil
}
