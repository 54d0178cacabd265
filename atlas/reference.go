package atlas

import (
	"sort"

	"go.viam.com/rdk/spatialmath"

	"go.viam.com/slam-atlas/engine"
)

// resolveReferencePoses recomputes the world reference pose of every map in
// the forest. A full recompute is required on every successful tracking step
// because child-map transforms depend on the current, possibly just-updated,
// parent pose. Callers must hold atlasMu.
//
// Maps are processed in ascending init-keyframe order, which is a topological
// order: a child's init keyframe id always exceeds the ids that existed in
// its parent when the child was spawned.
func (w *Wrapper) resolveReferencePoses() {
	maps := w.eng.Atlas().AllMaps()
	sort.Slice(maps, func(i, j int) bool {
		return maps[i].InitKeyFrameID() < maps[j].InitKeyFrameID()
	})

	w.indexKeyFrames(maps)

	w.refPoses = make(map[uint64]spatialmath.Pose, len(maps))
	worldOrigin := spatialmath.NewPoseFromPoint(w.cfg.RobotStart)
	for _, m := range maps {
		if m.InitKeyFrameID() == 0 {
			// The root map anchors the world frame: projecting its origin
			// keyframe must yield exactly the configured robot start pose.
			w.refPoses[m.ID()] = spatialmath.Compose(
				worldOrigin,
				spatialmath.PoseInverse(m.OriginKeyFrame().Pose()),
			)
			continue
		}

		// The keyframe that existed in the parent map when this map was
		// spawned ties the two frames together.
		parentKF, ok := w.kfIndex[m.InitKeyFrameID()-1]
		if !ok {
			// Inconsistent snapshot; leave this map unresolved and retry on
			// the next successful tracking step.
			w.logger.Warnw("inconsistent reference frame, parent keyframe missing",
				"map", m.ID(), "keyframe", m.InitKeyFrameID()-1)
			continue
		}
		parentRef, ok := w.refPoses[w.kfOwner[parentKF.ID()]]
		if !ok {
			w.logger.Warnw("inconsistent reference frame, parent map unresolved",
				"map", m.ID(), "parent_map", w.kfOwner[parentKF.ID()])
			continue
		}
		w.refPoses[m.ID()] = projectPose(parentRef, parentKF.Pose())
	}
}

// indexKeyFrames folds the forest snapshot into the historical keyframe
// index. Identifiers are unique atlas-wide; entries survive merges so
// keyframes of retired maps stay queryable, with ownership rebound to the
// surviving map.
func (w *Wrapper) indexKeyFrames(maps []engine.Map) {
	for _, m := range maps {
		for _, kf := range m.AllKeyFrames() {
			if _, seen := w.kfIndex[kf.ID()]; !seen {
				w.kfOrder = append(w.kfOrder, kf.ID())
			}
			w.kfIndex[kf.ID()] = kf
			w.kfOwner[kf.ID()] = m.ID()
		}
	}
}
