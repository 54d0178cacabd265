package atlas

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// StartMapToOdomPublisher periodically recomputes the map→odom correction
// from the latest odometry sample and hands it to sink. source reports the
// latest odometry sample and whether one is available yet; ticks before the
// first successful tracking step are skipped silently. The loop stops when
// ctx is done or the wrapper is closed.
func (w *Wrapper) StartMapToOdomPublisher(
	ctx context.Context,
	period time.Duration,
	source func() (Odometry, bool),
	sink func(TransformStamped),
) {
	w.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer w.activeBackgroundWorkers.Done()
		ticker := w.clock.Ticker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.cancelCtx.Done():
				return
			case <-ticker.C:
			}

			odom, ok := source()
			if !ok {
				continue
			}
			tf, err := w.MapToOdom(ctx, odom)
			if err != nil {
				if !errors.Is(err, ErrNotTracked) {
					w.logger.Errorw("failed to compute map to odom transform", "error", err)
				}
				continue
			}
			sink(tf)
		}
	})
}
