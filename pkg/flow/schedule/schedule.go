// Package schedule turns cron expressions into sources of tick times.
package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/common/validation"
	"github.com/vnykmshr/gopush/pkg/flow"
)

// Config holds configuration for a cron tick source.
type Config struct {
	// Expression is a standard five-field cron expression, e.g. "*/5 * * * *".
	Expression string

	// Location is the time zone the expression is evaluated in.
	// Defaults to time.Local.
	Location *time.Location
}

// Ticks returns a source that emits the current time at each firing of the
// cron expression. Ticks that fire while the subscriber has no outstanding
// demand are dropped rather than buffered, so a slow subscriber observes
// fewer ticks, never stale ones. The source never completes on its own.
func Ticks(expression string) (flow.Source[time.Time], error) {
	return TicksWithConfig(Config{Expression: expression})
}

// TicksWithConfig is Ticks with an explicit configuration.
func TicksWithConfig(config Config) (flow.Source[time.Time], error) {
	if err := validation.ValidateNotEmpty("schedule", "expression", config.Expression); err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	sched, err := cron.ParseStandard(config.Expression)
	if err != nil {
		return nil, gperrors.NewOperationError("schedule", "Parse", err).
			WithContext("expression " + config.Expression)
	}

	return &tickSource{schedule: sched, location: config.Location}, nil
}

type tickSource struct {
	schedule cron.Schedule
	location *time.Location
}

func (t *tickSource) Subscribe(sink flow.Sink[time.Time]) {
	sub := &tickSubscription{
		source: t,
		sink:   sink,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	sink.OnSubscribe(sub)
	go sub.run()
}

// tickSubscription sleeps until the next scheduled firing on a dedicated
// goroutine, the only writer of signals for the subscription.
type tickSubscription struct {
	source    *tickSource
	sink      flow.Sink[time.Time]
	requested atomic.Int64
	violation atomic.Pointer[error]
	wake      chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

func (s *tickSubscription) Request(n int64) {
	if n <= 0 {
		err := flow.BadRequest(n)
		s.violation.CompareAndSwap(nil, &err)
		select {
		case s.wake <- struct{}{}:
		default:
		}
		return
	}
	flow.AddDemand(&s.requested, n)
}

func (s *tickSubscription) Cancel() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *tickSubscription) run() {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		now := time.Now().In(s.source.location)
		next := s.source.schedule.Next(now)
		if next.IsZero() {
			// the expression can never fire again
			s.sink.OnComplete()
			return
		}
		timer.Reset(next.Sub(now))

		select {
		case <-s.stop:
			return
		case <-s.wake:
			if err := s.violation.Load(); err != nil {
				s.sink.OnError(*err)
				return
			}
		case fired := <-timer.C:
			if err := s.violation.Load(); err != nil {
				s.sink.OnError(*err)
				return
			}
			if s.requested.Load() == 0 {
				// no outstanding demand; drop the tick
				continue
			}
			s.sink.OnNext(fired.In(s.source.location))
			flow.ConsumeDemand(&s.requested, 1)
		}
	}
}
