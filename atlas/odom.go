package atlas

import (
	"context"
	"time"

	"go.opencensus.io/trace"

	"go.viam.com/rdk/spatialmath"
)

// Odometry is the latest odometry sample, expressed in the odom frame.
type Odometry struct {
	Pose      spatialmath.Pose
	Timestamp time.Time
}

// TransformStamped is a stamped transform between two named frames.
type TransformStamped struct {
	Parent    string
	Child     string
	Pose      spatialmath.Pose
	Timestamp time.Time
}

// MapToOdom computes the map→odom correction from the latest tracked pose
// and the given odometry sample. The stamp leads the odometry sample by the
// configured transform timeout so downstream extrapolation stays within
// tolerance. The correction is recomputed fresh on every call, never
// accumulated. Before the first successful tracking step there is nothing to
// publish and ErrNotTracked is returned.
func (w *Wrapper) MapToOdom(ctx context.Context, odom Odometry) (TransformStamped, error) {
	_, span := trace.StartSpan(ctx, "atlas::Wrapper::MapToOdom")
	defer span.End()

	tracked := w.tracked.Load()
	if tracked == nil {
		return TransformStamped{}, ErrNotTracked
	}

	correction := spatialmath.Compose(tracked.pose, spatialmath.PoseInverse(odom.Pose))
	return TransformStamped{
		Parent:    w.cfg.GlobalFrame,
		Child:     w.cfg.OdomFrame,
		Pose:      correction,
		Timestamp: odom.Timestamp.Add(w.cfg.TransformTimeout),
	}, nil
}
