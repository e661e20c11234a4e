package redisq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/gopush/internal/testutil"
	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/flow"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"nil client", Config{Key: "jobs"}},
		{"empty key", Config{Client: redis.NewClient(&redis.Options{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			testutil.AssertError(t, err)
			testutil.AssertEqual(t, gperrors.IsValidationError(err), true)
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	source, err := New(Config{
		Client: redis.NewClient(&redis.Options{}),
		Key:    "jobs",
	})
	testutil.AssertNoError(t, err)

	list, ok := source.(*listSource)
	if !ok {
		t.Fatalf("unexpected source type %T", source)
	}
	testutil.AssertEqual(t, list.config.PopTimeout, defaultPopTimeout)
	testutil.AssertEqual(t, list.config.RedisTimeout, defaultRedisTimeout)
}

// testClient connects to a local Redis or skips the test.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skip("Redis not available, skipping")
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestListSourceStreamsItems(t *testing.T) {
	rdb := testClient(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := fmt.Sprintf("gopush:test:%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), key, key+":consumers").Err()
	})

	for i := 1; i <= 3; i++ {
		testutil.AssertNoError(t, rdb.RPush(ctx, key, fmt.Sprintf("item-%d", i)).Err())
	}

	source, err := New(Config{
		Client:     rdb,
		Key:        key,
		ConsumerID: "test-consumer",
		PopTimeout: 100 * time.Millisecond,
	})
	testutil.AssertNoError(t, err)

	sink := testutil.NewSink[string](flow.Unbounded)
	source.Subscribe(sink)
	defer sink.Cancel()

	testutil.Eventually(t, func() bool {
		return len(sink.Values()) == 3
	}, testutil.TestTimeout, 10*time.Millisecond)

	sink.AssertValues(t, []string{"item-1", "item-2", "item-3"})
	sink.AssertNotTerminated(t)

	// the subscription registered its consumer id
	members, err := rdb.SMembers(ctx, key+":consumers").Result()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(members), 1)
	testutil.AssertEqual(t, members[0], "test-consumer")
}

func TestListSourceRespectsDemand(t *testing.T) {
	rdb := testClient(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	key := fmt.Sprintf("gopush:test:%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), key, key+":consumers").Err()
	})

	for i := 1; i <= 3; i++ {
		testutil.AssertNoError(t, rdb.RPush(ctx, key, fmt.Sprintf("item-%d", i)).Err())
	}

	source, err := New(Config{
		Client:     rdb,
		Key:        key,
		PopTimeout: 100 * time.Millisecond,
	})
	testutil.AssertNoError(t, err)

	sink := testutil.NewSink[string](1)
	source.Subscribe(sink)
	defer sink.Cancel()

	testutil.Eventually(t, func() bool {
		return len(sink.Values()) == 1
	}, testutil.TestTimeout, 10*time.Millisecond)

	// no outstanding demand; the remaining items stay in the list
	time.Sleep(200 * time.Millisecond)
	sink.AssertValueCount(t, 1)

	length, err := rdb.LLen(ctx, key).Result()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, length, 2)
}

func TestListSourceBadRequest(t *testing.T) {
	rdb := testClient(t)

	key := fmt.Sprintf("gopush:test:%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), key, key+":consumers").Err()
	})

	source, err := New(Config{
		Client:     rdb,
		Key:        key,
		PopTimeout: 100 * time.Millisecond,
	})
	testutil.AssertNoError(t, err)

	sink := testutil.NewSink[string](0)
	source.Subscribe(sink)

	sink.Request(-1)
	sink.Await(t)
	sink.AssertError(t, gperrors.ErrNonPositiveRequest)
}
