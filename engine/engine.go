// Package engine defines the boundary to an external visual(-inertial) SLAM
// engine. The engine owns feature tracking, mapping, loop closing and map
// merging; this package only describes the read surface the wrapper consumes:
// the atlas of disjoint maps, keyframes, map points and per-frame tracking
// results.
package engine

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/spatialmath"
)

// TrackingState describes the engine's tracking state after a frame step.
type TrackingState int

// Tracking states reported by the engine.
const (
	StateSystemNotReady TrackingState = iota - 1
	StateNoImagesYet
	StateNotInitialized
	StateOK
	StateLost
)

// TrackingStateFromCode maps the engine's raw integer state code onto a named
// state. Raw codes must not travel past this boundary.
func TrackingStateFromCode(code int) (TrackingState, error) {
	state := TrackingState(code)
	switch state {
	case StateSystemNotReady, StateNoImagesYet, StateNotInitialized, StateOK, StateLost:
		return state, nil
	default:
		return StateSystemNotReady, errors.Errorf("unknown tracking state code %d", code)
	}
}

func (s TrackingState) String() string {
	switch s {
	case StateSystemNotReady:
		return "SystemNotReady"
	case StateNoImagesYet:
		return "NoImagesYet"
	case StateNotInitialized:
		return "NotInitialized"
	case StateOK:
		return "OK"
	case StateLost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// InertialSample is one reading from the inertial sensor feed.
type InertialSample struct {
	LinearAcceleration r3.Vector
	AngularVelocity    spatialmath.AngularVelocity
	Timestamp          time.Time
}

// TrackResult is the outcome of one engine tracking step.
type TrackResult struct {
	// Pose is the camera pose at capture time, expressed in the engine's
	// current map-local frame.
	Pose spatialmath.Pose
	// State is the engine's tracking state after the step.
	State TrackingState
	// MergeInProgress reports that a map merge is running. Reference poses
	// change during a merge, so results carrying this flag must be discarded.
	MergeInProgress bool
}

// MapPoint is a 3D landmark owned by a keyframe.
type MapPoint interface {
	// Position is the point's position in its owning map's local frame.
	Position() r3.Vector
	// IsBad reports that the engine retired the point during outlier culling.
	IsBad() bool
}

// KeyFrame is one keyframe of a map. Identifiers are monotonic across the
// whole atlas, not per map.
type KeyFrame interface {
	ID() uint64
	// Pose returns the keyframe pose in map-local coordinates. The engine may
	// refine the pose in place during optimization, so callers must re-read
	// it on every use rather than cache it.
	Pose() spatialmath.Pose
	Timestamp() time.Time
	MapPoints() []MapPoint
}

// Map is one maximal connected set of keyframes produced by a continuous
// tracking session. Maps are created on (re)initialization and absorbed on
// merge; the wrapper never mutates them.
type Map interface {
	ID() uint64
	// InitKeyFrameID is the identifier of the keyframe at which this map was
	// created. It is zero for the very first map.
	InitKeyFrameID() uint64
	OriginKeyFrame() KeyFrame
	// AllKeyFrames returns the member keyframes in creation order.
	AllKeyFrames() []KeyFrame
}

// Atlas is the engine's forest of disjoint maps.
type Atlas interface {
	AllMaps() []Map
	CurrentMap() Map
}

// Engine is the external SLAM engine. TrackFrame is synchronous and may take
// substantial wall-clock time; callers must not hold locks across it.
type Engine interface {
	TrackFrame(
		ctx context.Context,
		color *rimage.Image,
		depth *rimage.DepthMap,
		timestamp time.Time,
		inertial []InertialSample,
	) (TrackResult, error)
	Atlas() Atlas
}
