package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stargraph/pkg/engine"
)

// settle steps the simulation until it cools. The engine bounds the number
// of steps with its MaxSettleSteps setting.
func (r *Runner) settle(ctx context.Context, e *engine.Engine) int {
	h := r.hooks()
	h.OnLayoutStart(ctx, e.Store().NodeCount())
	start := time.Now()
	ticks := e.Settle()
	h.OnLayoutComplete(ctx, ticks, time.Since(start))
	return ticks
}
