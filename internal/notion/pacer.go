package notion

import "time"

// pacer enforces a minimum spacing between consecutive calls, measured from
// the wall clock of the previous call. It holds one "token": a call is
// admitted as soon as minInterval has elapsed since the last one, never on
// a sliding-window budget. The single sync flow is the only caller, so no
// locking is needed.
type pacer struct {
	min   time.Duration
	last  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

func newPacer(min time.Duration) *pacer {
	return &pacer{min: min, now: time.Now, sleep: time.Sleep}
}

func (p *pacer) wait() {
	if p.min > 0 && !p.last.IsZero() {
		if remaining := p.min - p.now().Sub(p.last); remaining > 0 {
			p.sleep(remaining)
		}
	}
	p.last = p.now()
}
