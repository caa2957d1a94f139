package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"auditrail/audit"
	"auditrail/audit/store"
	"auditrail/logging"
)

func TestStore_AppendThenPublish(t *testing.T) {
	ctx := context.Background()
	pub := NewChannelPublisher(4)
	s := NewStore(store.NewMemoryAuditStore(), pub)

	stored, err := s.Append(ctx, &audit.Entry{
		Auditable: audit.Ref{Type: "Article", ID: "1"},
		Action:    audit.ActionCreate,
		Changes:   audit.Changes{"name": "A"},
	})
	require.NoError(t, err)

	published := <-pub.Entries()
	require.Equal(t, stored.ID, published.ID)
	require.Equal(t, stored.Auditable, published.Auditable)

	// 读路径透传
	entries, err := s.Load(ctx, audit.Ref{Type: "Article", ID: "1"}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, entry *audit.Entry) error {
	return errors.New("transport down")
}
func (failingPublisher) Close() error { return nil }

func TestStore_PublishFailureDoesNotFailAppend(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemoryAuditStore(), failingPublisher{})
	s.SetLogger(logging.NewNoopLogger())

	stored, err := s.Append(ctx, &audit.Entry{
		Auditable: audit.Ref{Type: "Article", ID: "1"},
		Action:    audit.ActionCreate,
		Changes:   audit.Changes{"name": "A"},
	})
	require.NoError(t, err)
	require.NotZero(t, stored.ID)

	// 发布失败不影响日志本身
	entries, err := s.Load(ctx, audit.Ref{Type: "Article", ID: "1"}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestChannelPublisher_BufferFull(t *testing.T) {
	ctx := context.Background()
	pub := NewChannelPublisher(1)
	entry := &audit.Entry{Auditable: audit.Ref{Type: "Article", ID: "1"}, Action: audit.ActionCreate}

	require.NoError(t, pub.Publish(ctx, entry))
	require.Error(t, pub.Publish(ctx, entry))

	require.NoError(t, pub.Close())
	require.Error(t, pub.Publish(ctx, entry))
}

type fakeRedisClient struct {
	lastArgs *redis.XAddArgs
	err      error
}

func (f *fakeRedisClient) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.lastArgs = a
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func (f *fakeRedisClient) Close() error { return nil }

func TestRedisPublisher_StreamPerType(t *testing.T) {
	fake := &fakeRedisClient{}
	pub := &RedisPublisher{
		cfg:    RedisConfig{StreamPrefix: "audits:"},
		client: fake,
	}

	entry := &audit.Entry{
		ID:        7,
		Auditable: audit.Ref{Type: "Article", ID: "1"},
		Action:    audit.ActionUpdate,
		Changes:   audit.Changes{"name": audit.Pair("A", "B")},
		RequestID: "req-1",
	}
	require.NoError(t, pub.Publish(context.Background(), entry))

	require.Equal(t, "audits:Article", fake.lastArgs.Stream)
	values := fake.lastArgs.Values.(map[string]interface{})
	require.Equal(t, "7", values["id"])
	require.Equal(t, "update", values["action"])

	var changes audit.Changes
	require.NoError(t, json.Unmarshal([]byte(values["changes"].(string)), &changes))
	_, newValue, ok := audit.PairValues(changes["name"])
	require.True(t, ok)
	require.Equal(t, "B", newValue)
}

func TestRedisPublisher_XAddError(t *testing.T) {
	fake := &fakeRedisClient{err: errors.New("connection refused")}
	pub := &RedisPublisher{cfg: RedisConfig{StreamPrefix: "audits:"}, client: fake}

	err := pub.Publish(context.Background(), &audit.Entry{
		Auditable: audit.Ref{Type: "Article", ID: "1"},
		Action:    audit.ActionCreate,
	})
	require.Error(t, err)
}

func TestNewRedisPublisher_RequiresClient(t *testing.T) {
	_, err := NewRedisPublisher(RedisConfig{})
	require.Error(t, err)
}
