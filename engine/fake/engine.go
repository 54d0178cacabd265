// Package fake implements a scripted SLAM engine for testing the wrapper.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/spatialmath"

	"go.viam.com/slam-atlas/engine"
)

var (
	_ engine.Engine   = (*Engine)(nil)
	_ engine.Atlas    = (*Atlas)(nil)
	_ engine.Map      = (*Map)(nil)
	_ engine.KeyFrame = (*KeyFrame)(nil)
	_ engine.MapPoint = (*MapPoint)(nil)
)

// MapPoint is a fake map point.
type MapPoint struct {
	Pos r3.Vector
	Bad bool
}

// Position returns the point's map-local position.
func (p *MapPoint) Position() r3.Vector { return p.Pos }

// IsBad reports whether the point was retired.
func (p *MapPoint) IsBad() bool { return p.Bad }

// KeyFrame is a fake keyframe whose pose can be updated between calls.
type KeyFrame struct {
	KFID   uint64
	KFPose spatialmath.Pose
	Stamp  time.Time
	Points []*MapPoint
}

// ID returns the atlas-wide keyframe identifier.
func (kf *KeyFrame) ID() uint64 { return kf.KFID }

// Pose returns the current map-local pose.
func (kf *KeyFrame) Pose() spatialmath.Pose { return kf.KFPose }

// Timestamp returns the capture timestamp.
func (kf *KeyFrame) Timestamp() time.Time { return kf.Stamp }

// MapPoints returns the keyframe's observed map points.
func (kf *KeyFrame) MapPoints() []engine.MapPoint {
	pts := make([]engine.MapPoint, 0, len(kf.Points))
	for _, p := range kf.Points {
		pts = append(pts, p)
	}
	return pts
}

// Map is a fake map.
type Map struct {
	MapID    uint64
	InitKFID uint64
	Origin   *KeyFrame
	KFs      []*KeyFrame
}

// ID returns the map identifier.
func (m *Map) ID() uint64 { return m.MapID }

// InitKeyFrameID returns the keyframe id the map was created at.
func (m *Map) InitKeyFrameID() uint64 { return m.InitKFID }

// OriginKeyFrame returns the map's origin keyframe.
func (m *Map) OriginKeyFrame() engine.KeyFrame { return m.Origin }

// AllKeyFrames returns the member keyframes in creation order.
func (m *Map) AllKeyFrames() []engine.KeyFrame {
	kfs := make([]engine.KeyFrame, 0, len(m.KFs))
	for _, kf := range m.KFs {
		kfs = append(kfs, kf)
	}
	return kfs
}

// Atlas is a fake map forest.
type Atlas struct {
	Maps    []*Map
	Current *Map
}

// AllMaps returns every map in the forest.
func (a *Atlas) AllMaps() []engine.Map {
	maps := make([]engine.Map, 0, len(a.Maps))
	for _, m := range a.Maps {
		maps = append(maps, m)
	}
	return maps
}

// CurrentMap returns the live map.
func (a *Atlas) CurrentMap() engine.Map { return a.Current }

// Engine is a scripted engine. Queue per-frame outcomes with EnqueueResult
// and inspect the inertial batches the wrapper handed over.
type Engine struct {
	mu              sync.Mutex
	atlas           *Atlas
	results         []engine.TrackResult
	trackErr        error
	TrackCalls      int
	InertialBatches [][]engine.InertialSample
}

// NewEngine returns a scripted engine over the given fake atlas.
func NewEngine(atlas *Atlas) *Engine {
	return &Engine{atlas: atlas}
}

// EnqueueResult queues the outcome of the next tracking step.
func (e *Engine) EnqueueResult(res engine.TrackResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = append(e.results, res)
}

// FailWith makes every subsequent tracking step return err.
func (e *Engine) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trackErr = err
}

// TrackFrame records the call and pops the next queued result. With nothing
// queued it reports NoImagesYet.
func (e *Engine) TrackFrame(
	ctx context.Context,
	color *rimage.Image,
	depth *rimage.DepthMap,
	timestamp time.Time,
	inertial []engine.InertialSample,
) (engine.TrackResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.TrackCalls++
	e.InertialBatches = append(e.InertialBatches, inertial)
	if e.trackErr != nil {
		return engine.TrackResult{}, e.trackErr
	}
	if len(e.results) == 0 {
		return engine.TrackResult{State: engine.StateNoImagesYet}, nil
	}
	res := e.results[0]
	e.results = e.results[1:]
	return res, nil
}

// Atlas returns the fake forest.
func (e *Engine) Atlas() engine.Atlas { return e.atlas }
