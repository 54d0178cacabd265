package engine

import (
	"testing"

	"go.viam.com/test"
)

func TestTrackingStateFromCode(t *testing.T) {
	for _, tc := range []struct {
		code int
		want TrackingState
	}{
		{-1, StateSystemNotReady},
		{0, StateNoImagesYet},
		{1, StateNotInitialized},
		{2, StateOK},
		{3, StateLost},
	} {
		t.Run(tc.want.String(), func(t *testing.T) {
			state, err := TrackingStateFromCode(tc.code)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, state, test.ShouldEqual, tc.want)
		})
	}

	_, err := TrackingStateFromCode(7)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown tracking state code")
}

func TestTrackingStateString(t *testing.T) {
	test.That(t, StateOK.String(), test.ShouldEqual, "OK")
	test.That(t, StateLost.String(), test.ShouldEqual, "Lost")
	test.That(t, TrackingState(9).String(), test.ShouldEqual, "Unknown")
}
