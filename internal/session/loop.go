package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTickInterval is how often the loop polls the controller.
const DefaultTickInterval = 50 * time.Millisecond

const eventBuffer = 64

// Loop owns a Controller and is the only goroutine that touches it. Other
// goroutines report changes through Send.
type Loop struct {
	ctrl     *Controller
	interval time.Duration
	events   chan Change
	log      *zap.Logger

	// OnTick, when set, observes every tick that did work or failed.
	OnTick func(Outcome, error)
}

// NewLoop creates a loop ticking ctrl at interval (DefaultTickInterval when zero).
func NewLoop(ctrl *Controller, interval time.Duration, log *zap.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		ctrl:     ctrl,
		interval: interval,
		events:   make(chan Change, eventBuffer),
		log:      log,
	}
}

// Send queues a change for the next tick. It blocks while the queue is full
// and gives up when ctx is done.
func (l *Loop) Send(ctx context.Context, ch Change) {
	select {
	case l.events <- ch:
	case <-ctx.Done():
	}
}

// Run starts the session and ticks until ctx is cancelled or the session
// terminates. Cancellation is a clean shutdown and returns nil; termination
// returns the error that caused it.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.ctrl.Start(); err != nil {
		return err
	}
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.ctrl.Cancel()
			l.log.Info("session cancelled")
			return nil

		case ch := <-l.events:
			l.ctrl.Notify(ch)

		case <-ticker.C:
			l.drain()
			outcome, err := l.ctrl.Tick(ctx)
			if l.OnTick != nil && (outcome != NoOp || err != nil) {
				l.OnTick(outcome, err)
			}
			if err == nil {
				continue
			}
			if l.ctrl.State() == Terminating {
				if ctx.Err() != nil {
					return nil
				}
				l.log.Error("session terminated", zap.Error(err))
				return err
			}
			l.log.Warn("rebuild failed, keeping previous output", zap.Error(err))
		}
	}
}

// drain applies every queued change so a burst collapses into one tick.
func (l *Loop) drain() {
	for {
		select {
		case ch := <-l.events:
			l.ctrl.Notify(ch)
		default:
			return
		}
	}
}
