package atlas

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"

	"go.viam.com/slam-atlas/conversions"
	"go.viam.com/slam-atlas/engine/fake"
)

// pointedForest is twoMapForest with map points attached: keyframe 4 sees a
// good and a retired point, keyframe 5 sees one good point.
func pointedForest() *fake.Atlas {
	forest := twoMapForest()
	forest.Maps[0].KFs[1].Points = []*fake.MapPoint{
		{Pos: r3.Vector{X: 1, Y: 1, Z: 1}},
		{Pos: r3.Vector{X: 9, Y: 9, Z: 9}, Bad: true},
	}
	forest.Maps[1].KFs[0].Points = []*fake.MapPoint{
		{Pos: r3.Vector{X: 2, Y: 2, Z: 2}},
	}
	return forest
}

func cloudPoints(cloud pointcloud.PointCloud) []r3.Vector {
	var pts []r3.Vector
	cloud.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		pts = append(pts, p)
		return true
	})
	return pts
}

func containsPoint(pts []r3.Vector, want r3.Vector) bool {
	for _, p := range pts {
		// tolerance covers the float32 round trip through PCD encoding
		if p.Sub(want).Norm() < 1e-3 {
			return true
		}
	}
	return false
}

func TestPoseGraphAllKeyFrames(t *testing.T) {
	w, _ := newTestWrapper(t, DefaultConfig(), pointedForest())
	resolve(w)

	nodes, err := w.PoseGraph(context.Background(), ScopeAllKeyFrames)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(nodes), test.ShouldEqual, 3)

	// Insertion order of the historical index, not identifier-sorted.
	test.That(t, nodes[0].ID, test.ShouldEqual, uint64(0))
	test.That(t, nodes[1].ID, test.ShouldEqual, uint64(4))
	test.That(t, nodes[2].ID, test.ShouldEqual, uint64(5))
	test.That(t, nodes[2].Timestamp.Equal(conversions.SecToStamp(2.0)), test.ShouldBeTrue)

	// Keyframe 5 projects through map B's chained reference pose.
	want := spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 2})
	test.That(t, spatialmath.PoseAlmostEqual(nodes[2].Pose, want), test.ShouldBeTrue)
}

func TestPoseGraphCurrentMap(t *testing.T) {
	w, _ := newTestWrapper(t, DefaultConfig(), pointedForest())
	resolve(w)

	nodes, err := w.PoseGraph(context.Background(), ScopeCurrentMap)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(nodes), test.ShouldEqual, 1)
	test.That(t, nodes[0].ID, test.ShouldEqual, uint64(5))
}

func TestPoseGraphUnknownScope(t *testing.T) {
	w, _ := newTestWrapper(t, DefaultConfig(), pointedForest())
	resolve(w)

	_, err := w.PoseGraph(context.Background(), PoseGraphScope(42))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown pose graph scope")
}

func TestPointCloudPartialResult(t *testing.T) {
	w, _ := newTestWrapper(t, DefaultConfig(), pointedForest())
	resolve(w)

	// One of three requested ids is absent; the call still succeeds with the
	// points of the two present keyframes.
	cloud, err := w.PointCloud(context.Background(), []uint64{4, 5, 99})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cloud.Size(), test.ShouldEqual, 2)

	pts := cloudPoints(cloud)
	test.That(t, containsPoint(pts, r3.Vector{X: 1, Y: 1, Z: 1}), test.ShouldBeTrue)
	// Keyframe 5's point carries map B's reference offset.
	test.That(t, containsPoint(pts, r3.Vector{X: 3, Y: 2, Z: 2}), test.ShouldBeTrue)
	// The retired point never appears.
	test.That(t, containsPoint(pts, r3.Vector{X: 9, Y: 9, Z: 9}), test.ShouldBeFalse)
}

func TestCurrentMapPoints(t *testing.T) {
	w, _ := newTestWrapper(t, DefaultConfig(), pointedForest())
	resolve(w)

	cloud, err := w.CurrentMapPoints(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cloud.Size(), test.ShouldEqual, 1)
	test.That(t, containsPoint(cloudPoints(cloud), r3.Vector{X: 3, Y: 2, Z: 2}), test.ShouldBeTrue)
}

func TestCurrentMapPointsUnresolved(t *testing.T) {
	// Without a resolution pass there is no reference pose for the current
	// map yet.
	w, _ := newTestWrapper(t, DefaultConfig(), pointedForest())

	_, err := w.CurrentMapPoints(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no reference pose resolved")
}
