// internal/blast/poll.go
package blast

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrPollTimeout is returned when a search stays WAITING past MaxWait.
var ErrPollTimeout = errors.New("timed out waiting for search to complete")

// StatusChecker is the one contract the poller needs.
type StatusChecker interface {
	CheckStatus(ctx context.Context, rid string) (Status, error)
}

// Poller retries status checks while a search is WAITING. Retry delays follow
// the Fibonacci progression 1s, 1s, 2s, 3s, 5s, ... capped at MaxDelay per
// retry and MaxWait in total. Any status other than WAITING ends the loop on
// the spot; the first check happens before any delay.
type Poller struct {
	Checker  StatusChecker
	MaxDelay time.Duration // per-retry delay cap; 0 = uncapped
	MaxWait  time.Duration // total budget across retries; 0 = unbounded
	Logger   *slog.Logger

	sleep func(context.Context, time.Duration) error // test hook
}

// Wait polls until the search leaves WAITING, the budget runs out
// (ErrPollTimeout), or the context is cancelled.
func (p *Poller) Wait(ctx context.Context, rid string) (Status, error) {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var waited time.Duration
	prev, cur := time.Duration(0), time.Second
	for {
		st, err := p.Checker.CheckStatus(ctx, rid)
		if err != nil {
			return st, err
		}
		if st != StatusWaiting {
			return st, nil
		}

		delay := cur
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		if p.MaxWait > 0 && waited+delay > p.MaxWait {
			return StatusWaiting, ErrPollTimeout
		}
		if p.Logger != nil {
			p.Logger.Info("search still running", "rid", rid, "next_check_in", delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return StatusWaiting, err
		}
		waited += delay
		prev, cur = cur, prev+cur
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
