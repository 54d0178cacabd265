// Package conversions holds pure conversions between the SLAM engine's
// native pose, point and timestamp representations and the world-frame
// representations used downstream. Nothing here keeps state.
package conversions

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rdk/spatialmath"
)

// opticalToBody rotates from the camera optical frame (x right, y down,
// z forward) into the robot body frame (x forward, y left, z up).
var opticalToBody = quat.Number{Real: 0.5, Imag: -0.5, Jmag: 0.5, Kmag: -0.5}

// StampToSec converts a timestamp into engine time, seconds since the Unix
// epoch.
func StampToSec(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// SecToStamp converts engine time back into a timestamp.
func SecToStamp(sec float64) time.Time {
	return time.Unix(0, int64(math.Round(sec*1e9)))
}

// QuaternionPose assembles a pose from a translation and quaternion
// components, the layout odometry and transform messages arrive in.
func QuaternionPose(x, y, z, qw, qx, qy, qz float64) spatialmath.Pose {
	return spatialmath.NewPose(
		r3.Vector{X: x, Y: y, Z: z},
		&spatialmath.Quaternion{Real: qw, Imag: qx, Jmag: qy, Kmag: qz},
	)
}

// PointFromOptical maps a point expressed in the camera optical frame into
// the body frame.
func PointFromOptical(pt r3.Vector) r3.Vector {
	return rotateVector(opticalToBody, pt)
}

// PointToOptical is the inverse of PointFromOptical.
func PointToOptical(pt r3.Vector) r3.Vector {
	return rotateVector(quat.Conj(opticalToBody), pt)
}

// PoseFromOptical re-expresses a pose given in the camera optical frame in
// the body frame, conjugating its rotation by the fixed basis change.
func PoseFromOptical(p spatialmath.Pose) spatialmath.Pose {
	return conjugatePose(opticalToBody, p)
}

// PoseToOptical is the inverse of PoseFromOptical.
func PoseToOptical(p spatialmath.Pose) spatialmath.Pose {
	return conjugatePose(quat.Conj(opticalToBody), p)
}

func conjugatePose(basis quat.Number, p spatialmath.Pose) spatialmath.Pose {
	rotation := quat.Mul(quat.Mul(basis, p.Orientation().Quaternion()), quat.Conj(basis))
	orientation := spatialmath.Quaternion(rotation)
	return spatialmath.NewPose(rotateVector(basis, p.Point()), &orientation)
}

func rotateVector(q quat.Number, v r3.Vector) r3.Vector {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q, qv), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}
