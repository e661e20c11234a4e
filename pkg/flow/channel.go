package flow

import (
	"context"
	"sync"
	"sync/atomic"
)

// FromChannel returns a source that emits values received from ch until the
// channel closes, then completes. Each subscription runs a dedicated pump
// goroutine that only reads from the channel while downstream demand is
// outstanding; values arriving without demand stay buffered in the channel,
// which makes the channel's own capacity the backpressure buffer.
func FromChannel[T any](ch <-chan T) Source[T] {
	return SourceFunc[T](func(sink Sink[T]) {
		sub := &channelSubscription[T]{
			ch:   ch,
			sink: sink,
			wake: make(chan struct{}, 1),
			stop: make(chan struct{}),
		}
		sink.OnSubscribe(sub)
		go sub.pump()
	})
}

// channelSubscription bridges request/cancel onto a pump goroutine. The pump
// is the only writer of signals, which keeps them serialized; Request and
// Cancel just move atomics and poke the wake channel. A protocol violation is
// parked in the violation slot and raised by the pump so the error signal
// cannot race a value signal.
type channelSubscription[T any] struct {
	ch        <-chan T
	sink      Sink[T]
	requested atomic.Int64
	violation atomic.Pointer[error]
	wake      chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

func (c *channelSubscription[T]) Request(n int64) {
	if n <= 0 {
		err := BadRequest(n)
		c.violation.CompareAndSwap(nil, &err)
		c.poke()
		return
	}
	AddDemand(&c.requested, n)
	c.poke()
}

func (c *channelSubscription[T]) Cancel() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *channelSubscription[T]) poke() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *channelSubscription[T]) pump() {
	for {
		for c.requested.Load() == 0 && c.violation.Load() == nil {
			select {
			case <-c.stop:
				return
			case <-c.wake:
			}
		}
		if err := c.violation.Load(); err != nil {
			c.sink.OnError(*err)
			return
		}
		select {
		case <-c.stop:
			return
		case <-c.wake:
			// woken to re-check the violation slot
		case value, ok := <-c.ch:
			if !ok {
				c.sink.OnComplete()
				return
			}
			c.sink.OnNext(value)
			ConsumeDemand(&c.requested, 1)
		}
	}
}

// ToChannel subscribes to source with unbounded demand and exposes its values
// on a receive-only channel with the given buffer capacity. The value channel
// is closed when the stream terminates normally or with an error; a terminal
// error, or ctx.Err() when the context ends the bridge first, is delivered on
// the error channel, which carries at most one error and stays open.
//
// When ctx is canceled the upstream is cancelled cooperatively, so an
// emission already in flight may still be dropped rather than delivered, and
// the value channel is not closed; consumers should select on the error
// channel or ctx alongside the value channel.
//
// The forwarding sink blocks the emitting goroutine while the consumer lags
// beyond the buffer, trading the protocol's demand control for channel
// semantics.
func ToChannel[T any](ctx context.Context, source Source[T], buffer int) (<-chan T, <-chan error) {
	if buffer < 0 {
		buffer = 0
	}
	sink := &channelSink[T]{
		ctx:  ctx,
		out:  make(chan T, buffer),
		errc: make(chan error, 1),
		stop: make(chan struct{}),
	}
	source.Subscribe(sink)
	return sink.out, sink.errc
}

// channelSink forwards signals into channels. Only the serialized signal
// path closes the value channel; the context watcher reports through the
// error slot instead, so no send can race a close.
type channelSink[T any] struct {
	ctx      context.Context
	out      chan T
	errc     chan error
	upstream atomic.Pointer[Subscription]
	errSent  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

func (c *channelSink[T]) OnSubscribe(s Subscription) {
	if !SetOnce(&c.upstream, s) {
		return
	}
	go func() {
		select {
		case <-c.ctx.Done():
			Terminate(&c.upstream)
			c.reportErr(c.ctx.Err())
		case <-c.stop:
		}
	}()
	s.Request(Unbounded)
}

func (c *channelSink[T]) OnNext(value T) {
	select {
	case c.out <- value:
	case <-c.ctx.Done():
		// consumer side is gone; the watcher is cancelling upstream
	}
}

func (c *channelSink[T]) OnError(err error) {
	c.reportErr(err)
	c.finish()
}

func (c *channelSink[T]) OnComplete() {
	c.finish()
}

// reportErr delivers at most one error for the bridge's lifetime; later
// errors have no slot and go to the dropped-error hook.
func (c *channelSink[T]) reportErr(err error) {
	if c.errSent.CompareAndSwap(false, true) {
		c.errc <- err
		return
	}
	DropError(err)
}

func (c *channelSink[T]) finish() {
	c.stopOnce.Do(func() {
		close(c.stop)
		close(c.out)
	})
}
