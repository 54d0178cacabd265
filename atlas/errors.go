package atlas

import (
	"github.com/pkg/errors"

	"go.viam.com/slam-atlas/engine"
)

// Typed failures surfaced by the wrapper. None are fatal and none trigger
// automatic retries; callers decide whether to re-feed frames.
var (
	// ErrEngineNotReady reports that the engine has not started up yet.
	ErrEngineNotReady = errors.New("tracking failed: engine not ready")
	// ErrNoImagesYet reports that the engine has not received images yet.
	ErrNoImagesYet = errors.New("tracking failed: no images yet")
	// ErrNotInitialized reports that the engine has not initialized a map yet.
	ErrNotInitialized = errors.New("tracking failed: not initialized")
	// ErrTrackingLost reports that the engine lost tracking on this frame.
	ErrTrackingLost = errors.New("tracking failed: tracking lost")
	// ErrMergeInProgress reports that the engine is merging maps. Reference
	// poses are mid-mutation, so nothing is published; retry the next frame.
	ErrMergeInProgress = errors.New("map merge in progress")
	// ErrNotSynchronized reports that no inertial data was buffered for an
	// inertial-mode frame. The frame is skipped, not failed.
	ErrNotSynchronized = errors.New("no inertial samples buffered for frame")
	// ErrNotTracked reports that no frame has been tracked successfully yet.
	ErrNotTracked = errors.New("no successfully tracked pose yet")
)

// trackingStateError maps engine-reported failure states onto typed errors.
func trackingStateError(state engine.TrackingState) error {
	switch state {
	case engine.StateSystemNotReady:
		return ErrEngineNotReady
	case engine.StateNoImagesYet:
		return ErrNoImagesYet
	case engine.StateNotInitialized:
		return ErrNotInitialized
	case engine.StateLost:
		return ErrTrackingLost
	case engine.StateOK:
		return nil
	default:
		return errors.Errorf("unexpected tracking state %v", state)
	}
}
