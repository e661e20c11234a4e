// Package redisq streams items from a Redis list as a backpressured
// flow.Source. Items are popped only while downstream demand is outstanding,
// so the list itself is the overflow buffer.
package redisq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/common/validation"
	"github.com/vnykmshr/gopush/pkg/flow"
	"github.com/vnykmshr/gopush/pkg/metrics"
)

// Config holds configuration for a Redis list source.
type Config struct {
	// Client is the Redis client used to pop items.
	Client redis.UniversalClient

	// Key is the Redis list key to consume.
	Key string

	// ConsumerID uniquely identifies a subscription in the consumer registry
	// at <Key>:consumers. Defaults to a random UUID per subscription.
	ConsumerID string

	// PopTimeout bounds each blocking pop. Defaults to 1s. Shorter timeouts
	// observe cancellation sooner at the cost of more Redis round trips.
	PopTimeout time.Duration

	// RedisTimeout bounds bookkeeping commands such as consumer
	// registration. Defaults to 5s.
	RedisTimeout time.Duration

	// Metrics configures optional Prometheus instrumentation.
	Metrics metrics.Config
}

const (
	defaultPopTimeout   = time.Second
	defaultRedisTimeout = 5 * time.Second
)

// New returns a source that streams items pushed onto the configured Redis
// list. Each subscription registers its consumer id, pops items with BLPOP as
// downstream demand allows, and deregisters when it ends. The source never
// completes on its own: it ends on a Redis error or downstream cancellation.
func New(config Config) (flow.Source[string], error) {
	if err := validation.ValidateNotNil("redisq", "client", config.Client); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("redisq", "key", config.Key); err != nil {
		return nil, err
	}
	if config.PopTimeout <= 0 {
		config.PopTimeout = defaultPopTimeout
	}
	if config.RedisTimeout <= 0 {
		config.RedisTimeout = defaultRedisTimeout
	}

	var registry *metrics.Registry
	if config.Metrics.Enabled {
		registry = metrics.DefaultRegistry
		if config.Metrics.Registry != nil {
			registry = config.Metrics.Registry
		}
	}

	return &listSource{config: config, registry: registry}, nil
}

type listSource struct {
	config   Config
	registry *metrics.Registry
}

func (l *listSource) Subscribe(sink flow.Sink[string]) {
	consumerID := l.config.ConsumerID
	if consumerID == "" {
		consumerID = uuid.NewString()
	}

	sub := &listSubscription{
		source:     l,
		sink:       sink,
		consumerID: consumerID,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}
	sink.OnSubscribe(sub)
	go sub.pump()
}

// listSubscription pops from the list on a dedicated goroutine, the only
// writer of signals for the subscription. Request and Cancel move atomics and
// poke the pump.
type listSubscription struct {
	source     *listSource
	sink       flow.Sink[string]
	consumerID string
	requested  atomic.Int64
	violation  atomic.Pointer[error]
	wake       chan struct{}
	stop       chan struct{}
	stopOnce   sync.Once
}

func (s *listSubscription) Request(n int64) {
	if n <= 0 {
		err := flow.BadRequest(n)
		s.violation.CompareAndSwap(nil, &err)
		s.poke()
		return
	}
	flow.AddDemand(&s.requested, n)
	s.poke()
}

func (s *listSubscription) Cancel() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *listSubscription) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *listSubscription) pump() {
	s.register()
	defer s.deregister()

	for {
		for s.requested.Load() == 0 && s.violation.Load() == nil {
			select {
			case <-s.stop:
				return
			case <-s.wake:
			}
		}
		if err := s.violation.Load(); err != nil {
			s.sink.OnError(*err)
			return
		}

		value, ok, err := s.pop()
		if err != nil {
			s.sink.OnError(gperrors.NewOperationError("redisq", "Pop", err).
				WithContext("key " + s.source.config.Key))
			return
		}
		select {
		case <-s.stop:
			return
		default:
		}
		if !ok {
			// pop timed out with nothing queued; go around and re-check demand
			continue
		}

		s.sink.OnNext(value)
		flow.ConsumeDemand(&s.requested, 1)
	}
}

// pop blocks for one item up to the configured timeout. The false return
// means the timeout elapsed with the list empty.
func (s *listSubscription) pop() (string, bool, error) {
	config := s.source.config

	ctx, cancel := context.WithTimeout(context.Background(), config.PopTimeout+config.RedisTimeout)
	defer cancel()

	start := time.Now()
	result, err := config.Client.BLPop(ctx, config.PopTimeout, config.Key).Result()
	if registry := s.source.registry; registry != nil {
		registry.QueuePopLatency.WithLabelValues(config.Key).Observe(time.Since(start).Seconds())
	}
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// BLPOP replies [key, value]
	if registry := s.source.registry; registry != nil {
		registry.QueueItemsPopped.WithLabelValues(config.Key).Inc()
	}
	return result[1], true, nil
}

func (s *listSubscription) register() {
	config := s.source.config

	ctx, cancel := context.WithTimeout(context.Background(), config.RedisTimeout)
	defer cancel()

	if err := config.Client.SAdd(ctx, config.Key+":consumers", s.consumerID).Err(); err != nil {
		flow.DropError(gperrors.NewOperationError("redisq", "Register", err).
			WithContext("consumer " + s.consumerID))
		return
	}
	if registry := s.source.registry; registry != nil {
		registry.QueueActiveConsumers.WithLabelValues(config.Key).Inc()
	}
}

func (s *listSubscription) deregister() {
	config := s.source.config

	ctx, cancel := context.WithTimeout(context.Background(), config.RedisTimeout)
	defer cancel()

	if err := config.Client.SRem(ctx, config.Key+":consumers", s.consumerID).Err(); err != nil {
		flow.DropError(gperrors.NewOperationError("redisq", "Deregister", err).
			WithContext("consumer " + s.consumerID))
		return
	}
	if registry := s.source.registry; registry != nil {
		registry.QueueActiveConsumers.WithLabelValues(config.Key).Dec()
	}
}
