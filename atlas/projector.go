package atlas

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/spatialmath"
)

// projectPose projects a map-local pose into the world frame through its
// owning map's reference pose. The reference pose must belong to the same
// map as the local pose; the keyed lookup discipline in reference.go is what
// enforces that, a mismatch yields a geometrically wrong result, not an
// error.
func projectPose(referencePose, localPose spatialmath.Pose) spatialmath.Pose {
	return spatialmath.Compose(referencePose, localPose)
}

// projectPoint projects a map-local point into the world frame.
func projectPoint(referencePose spatialmath.Pose, localPoint r3.Vector) r3.Vector {
	return spatialmath.Compose(referencePose, spatialmath.NewPoseFromPoint(localPoint)).Point()
}
