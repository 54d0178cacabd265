package atlas

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"

	"go.viam.com/slam-atlas/engine"
)

// PoseGraphScope selects which keyframes a pose graph covers.
type PoseGraphScope int

const (
	// ScopeAllKeyFrames covers every keyframe ever indexed, including those
	// of retired or merged maps.
	ScopeAllKeyFrames PoseGraphScope = iota
	// ScopeCurrentMap covers only the live current map's keyframes.
	ScopeCurrentMap
)

// PoseGraphNode is one keyframe projected into the world frame.
type PoseGraphNode struct {
	ID        uint64
	Pose      spatialmath.Pose
	Timestamp time.Time
}

// PoseGraph assembles a consistent snapshot of keyframe world poses. The
// whole assembly runs under the atlas lock so a concurrent reference-pose
// recompute cannot interleave and mix old and new reference poses. Node
// order is iteration order, not identifier order.
func (w *Wrapper) PoseGraph(ctx context.Context, scope PoseGraphScope) ([]PoseGraphNode, error) {
	_, span := trace.StartSpan(ctx, "atlas::Wrapper::PoseGraph")
	defer span.End()

	w.atlasMu.Lock()
	defer w.atlasMu.Unlock()

	switch scope {
	case ScopeAllKeyFrames:
		nodes := make([]PoseGraphNode, 0, len(w.kfOrder))
		for _, id := range w.kfOrder {
			node, ok := w.projectKeyFrame(w.kfIndex[id])
			if !ok {
				continue
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	case ScopeCurrentMap:
		kfs := w.eng.Atlas().CurrentMap().AllKeyFrames()
		nodes := make([]PoseGraphNode, 0, len(kfs))
		for _, kf := range kfs {
			node, ok := w.projectKeyFrame(kf)
			if !ok {
				continue
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	default:
		return nil, errors.Errorf("unknown pose graph scope %d", scope)
	}
}

// projectKeyFrame projects one keyframe through its owning map's current
// reference pose. Keyframes whose map has no resolved reference pose yet are
// skipped. Callers must hold atlasMu.
func (w *Wrapper) projectKeyFrame(kf engine.KeyFrame) (PoseGraphNode, bool) {
	ref, ok := w.refPoses[w.kfOwner[kf.ID()]]
	if !ok {
		w.logger.Warnw("skipping keyframe of unresolved map", "keyframe", kf.ID())
		return PoseGraphNode{}, false
	}
	return PoseGraphNode{
		ID:        kf.ID(),
		Pose:      projectPose(ref, kf.Pose()),
		Timestamp: kf.Timestamp(),
	}, true
}

// PointCloud emits the world-frame map points observed by the requested
// keyframes. Identifiers absent from the historical index are skipped with a
// warning; partial results are valid.
func (w *Wrapper) PointCloud(ctx context.Context, keyframeIDs []uint64) (pointcloud.PointCloud, error) {
	_, span := trace.StartSpan(ctx, "atlas::Wrapper::PointCloud")
	defer span.End()

	w.atlasMu.Lock()
	defer w.atlasMu.Unlock()

	cloud := pointcloud.New()
	for _, id := range keyframeIDs {
		kf, ok := w.kfIndex[id]
		if !ok {
			w.logger.Warnw("requested keyframe id not available", "keyframe", id)
			continue
		}
		ref, ok := w.refPoses[w.kfOwner[id]]
		if !ok {
			w.logger.Warnw("skipping keyframe of unresolved map", "keyframe", id)
			continue
		}
		if err := addMapPoints(cloud, ref, kf.MapPoints()); err != nil {
			return nil, err
		}
	}
	return cloud, nil
}

// CurrentMapPoints returns every live map point of the current map's
// keyframes as one world-frame cloud.
func (w *Wrapper) CurrentMapPoints(ctx context.Context) (pointcloud.PointCloud, error) {
	_, span := trace.StartSpan(ctx, "atlas::Wrapper::CurrentMapPoints")
	defer span.End()

	w.atlasMu.Lock()
	defer w.atlasMu.Unlock()

	current := w.eng.Atlas().CurrentMap()
	ref, ok := w.refPoses[current.ID()]
	if !ok {
		return nil, errors.Errorf("no reference pose resolved for current map %d", current.ID())
	}

	cloud := pointcloud.New()
	for _, kf := range current.AllKeyFrames() {
		if err := addMapPoints(cloud, ref, kf.MapPoints()); err != nil {
			return nil, err
		}
	}
	return cloud, nil
}

func addMapPoints(cloud pointcloud.PointCloud, ref spatialmath.Pose, points []engine.MapPoint) error {
	for _, pt := range points {
		// points retired by outlier culling never reach any output
		if pt.IsBad() {
			continue
		}
		if err := cloud.Set(projectPoint(ref, pt.Position()), nil); err != nil {
			return err
		}
	}
	return nil
}
