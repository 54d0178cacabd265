// Package atlas exposes a globally consistent robot pose and map structure
// over a SLAM engine that maintains a forest of disjoint maps. The engine
// creates a fresh map whenever tracking is lost and re-initialized and merges
// maps when overlap is detected; this package chains every map back into one
// time-consistent world frame, drives the synchronized tracking pipeline and
// publishes the map→odom correction.
package atlas

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/rdk/referenceframe"
	"go.viam.com/rdk/spatialmath"

	"go.viam.com/slam-atlas/engine"
)

// Wrapper coordinates the tracking pipeline, the reference-frame resolver and
// the snapshot/odometry query paths over one shared engine.
type Wrapper struct {
	cfg     Config
	eng     engine.Engine
	decoder engine.FrameDecoder
	clock   clock.Clock
	logger  golog.Logger

	// bufMu guards the inertial FIFO only. It is never held across the
	// engine's tracking call.
	bufMu       sync.Mutex
	inertialBuf []engine.InertialSample

	// atlasMu guards the reference-pose table and the historical keyframe
	// index. Reference recomputation and snapshot assembly each run whole
	// under it so neither can observe the other mid-mutation.
	atlasMu  sync.Mutex
	refPoses map[uint64]spatialmath.Pose
	kfIndex  map[uint64]engine.KeyFrame
	kfOwner  map[uint64]uint64
	kfOrder  []uint64

	tracked atomic.Pointer[trackedPose]

	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

type trackedPose struct {
	pose spatialmath.Pose
}

// New returns a wrapper over the given engine. A nil decoder selects the
// default rimage-backed frame decoder.
func New(cfg Config, eng engine.Engine, decoder engine.FrameDecoder, logger golog.Logger) (*Wrapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid wrapper config")
	}
	if decoder == nil {
		decoder = engine.NewFrameDecoder()
	}
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	return &Wrapper{
		cfg:        cfg,
		eng:        eng,
		decoder:    decoder,
		clock:      clock.New(),
		logger:     logger,
		refPoses:   map[uint64]spatialmath.Pose{},
		kfIndex:    map[uint64]engine.KeyFrame{},
		kfOwner:    map[uint64]uint64{},
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// Frame is one color+depth image pair as received from transport.
type Frame struct {
	Color          []byte
	Depth          []byte
	MimeType       string
	ColorTimestamp time.Time
	DepthTimestamp time.Time
}

// time is the frame pair's synchronization point, the earlier of the two
// capture timestamps.
func (f *Frame) time() time.Time {
	if f.DepthTimestamp.Before(f.ColorTimestamp) {
		return f.DepthTimestamp
	}
	return f.ColorTimestamp
}

// AddInertialSample buffers one inertial sample for the next tracked frame.
// Samples arrive in timestamp order and are consumed exactly once.
func (w *Wrapper) AddInertialSample(sample engine.InertialSample) {
	w.bufMu.Lock()
	w.inertialBuf = append(w.inertialBuf, sample)
	w.bufMu.Unlock()
}

// TrackFrame runs one tracking step over a frame pair. On success it returns
// the robot's world-frame pose; otherwise it returns one of the package's
// typed errors, leaving the tracked pose and reference poses untouched.
func (w *Wrapper) TrackFrame(ctx context.Context, frame Frame, useInertial bool) (spatialmath.Pose, error) {
	ctx, span := trace.StartSpan(ctx, "atlas::Wrapper::TrackFrame")
	defer span.End()

	color, err := w.decoder.DecodeColor(ctx, frame.Color, frame.MimeType)
	if err != nil {
		return nil, errors.Wrap(err, "decoding color frame")
	}
	depth, err := w.decoder.DecodeDepth(ctx, frame.Depth, frame.MimeType)
	if err != nil {
		return nil, errors.Wrap(err, "decoding depth frame")
	}

	var samples []engine.InertialSample
	if useInertial {
		var remaining int
		samples, remaining = w.drainInertial(frame.time())
		if remaining == 0 {
			// The engine asserts inertial synchronization; without buffered
			// samples ahead of this frame the step is skipped, not failed.
			return nil, ErrNotSynchronized
		}
	}

	result, err := w.eng.TrackFrame(ctx, color, depth, frame.ColorTimestamp, samples)
	if err != nil {
		return nil, errors.Wrap(err, "engine tracking step")
	}

	if result.MergeInProgress {
		// Reference poses change while maps merge; recomputing now would use
		// a transform set mid-mutation.
		w.logger.Debug("waiting for map merge to finish")
		return nil, ErrMergeInProgress
	}

	if result.State != engine.StateOK {
		w.logger.Debugw("tracking step failed", "state", result.State.String())
		return nil, trackingStateError(result.State)
	}

	w.atlasMu.Lock()
	defer w.atlasMu.Unlock()
	w.resolveReferencePoses()
	current := w.eng.Atlas().CurrentMap()
	ref, ok := w.refPoses[current.ID()]
	if !ok {
		return nil, errors.Errorf("no reference pose resolved for current map %d", current.ID())
	}
	worldPose := projectPose(ref, result.Pose)
	w.tracked.Store(&trackedPose{pose: worldPose})
	return worldPose, nil
}

// drainInertial collects, in arrival order, every buffered sample whose
// timestamp is at or before the frame time, removing each from the buffer.
// It also reports how many samples remain buffered after the drain.
func (w *Wrapper) drainInertial(frameTime time.Time) ([]engine.InertialSample, int) {
	w.bufMu.Lock()
	defer w.bufMu.Unlock()
	var n int
	for n < len(w.inertialBuf) && !w.inertialBuf[n].Timestamp.After(frameTime) {
		n++
	}
	drained := make([]engine.InertialSample, n)
	copy(drained, w.inertialBuf[:n])
	w.inertialBuf = append(w.inertialBuf[:0], w.inertialBuf[n:]...)
	return drained, len(w.inertialBuf)
}

// Position returns the most recent successfully tracked world pose, labeled
// with the global frame. It reads the latest published value and never
// blocks the tracking path.
func (w *Wrapper) Position(ctx context.Context) (*referenceframe.PoseInFrame, error) {
	_, span := trace.StartSpan(ctx, "atlas::Wrapper::Position")
	defer span.End()

	tracked := w.tracked.Load()
	if tracked == nil {
		return nil, ErrNotTracked
	}
	return referenceframe.NewPoseInFrame(w.cfg.GlobalFrame, tracked.pose), nil
}

// Close stops background publishers and waits for them to exit.
func (w *Wrapper) Close() error {
	w.cancelFunc()
	w.activeBackgroundWorkers.Wait()
	return nil
}
