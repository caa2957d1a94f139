package sql

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"auditrail/audit"
	"auditrail/audit/store"
	"auditrail/storage/database"
	"auditrail/storage/database/basic"
)

func newTestStore(t *testing.T) *SQLAuditStore {
	t.Helper()

	db, err := basic.New(database.DBConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "audits.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLAuditStore(db, "")
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func articleEntry(action audit.Action, changes audit.Changes) *audit.Entry {
	return &audit.Entry{
		Auditable: audit.Ref{Type: "Article", ID: "1"},
		Action:    action,
		Changes:   changes,
		RequestID: "req-1",
	}
}

func TestSQLAuditStore_AppendLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	actor := audit.Actor{}
	actor.SetRef(audit.Ref{Type: "User", ID: "42"})

	in := articleEntry(audit.ActionUpdate, audit.Changes{"name": audit.Pair("A", "B")})
	in.Actor = actor
	in.Parent = &audit.Ref{Type: "Blog", ID: "9"}
	in.Associated = &audit.Ref{Type: "Site", ID: "3"}
	in.Comment = "rename"
	in.RemoteAddress = "10.0.0.1"

	stored, err := s.Append(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, stored.ID)
	require.False(t, stored.CreatedAt.IsZero())

	entries, err := s.Load(ctx, audit.Ref{Type: "Article", ID: "1"}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	require.Equal(t, stored.ID, got.ID)
	require.Equal(t, audit.ActionUpdate, got.Action)
	require.Equal(t, "User", got.Actor.Ref.Type)
	require.Equal(t, "42", got.Actor.Ref.ID)
	require.Empty(t, got.Actor.Name)
	require.Equal(t, "Blog", got.Parent.Type)
	require.Equal(t, "Site", got.Associated.Type)
	require.Equal(t, "rename", got.Comment)
	require.Equal(t, "10.0.0.1", got.RemoteAddress)
	require.Equal(t, "req-1", got.RequestID)

	// JSON 往返后二元组仍可识别
	oldValue, newValue, ok := audit.PairValues(got.Changes["name"])
	require.True(t, ok)
	require.Equal(t, "A", oldValue)
	require.Equal(t, "B", newValue)
}

func TestSQLAuditStore_Append_TextActor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := articleEntry(audit.ActionCreate, audit.Changes{"name": "A"})
	in.Actor.SetName("batch-import")

	_, err := s.Append(ctx, in)
	require.NoError(t, err)

	entries, err := s.Load(ctx, audit.Ref{Type: "Article", ID: "1"}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].Actor.Ref)
	require.Equal(t, "batch-import", entries[0].Actor.Name)
}

func TestSQLAuditStore_IDsFollowAppendOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var prev int64
	for i := 0; i < 5; i++ {
		e, err := s.Append(ctx, articleEntry(audit.ActionUpdate, audit.Changes{"n": audit.Pair(i, i+1)}))
		require.NoError(t, err)
		require.Greater(t, e.ID, prev)
		prev = e.ID
	}
}

func TestSQLAuditStore_Load_Options(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e1, err := s.Append(ctx, articleEntry(audit.ActionCreate, audit.Changes{"name": "A"}))
	require.NoError(t, err)
	e2, err := s.Append(ctx, articleEntry(audit.ActionUpdate, audit.Changes{"name": audit.Pair("A", "B")}))
	require.NoError(t, err)
	e3, err := s.Append(ctx, articleEntry(audit.ActionDestroy, audit.Changes{"name": "B"}))
	require.NoError(t, err)

	ref := audit.Ref{Type: "Article", ID: "1"}

	creates, err := s.Load(ctx, ref, &store.LoadOptions{Actions: []audit.Action{audit.ActionCreate}})
	require.NoError(t, err)
	require.Len(t, creates, 1)
	require.Equal(t, e1.ID, creates[0].ID)

	bounded, err := s.Load(ctx, ref, &store.LoadOptions{MinID: e2.ID, MaxID: e3.ID})
	require.NoError(t, err)
	require.Len(t, bounded, 2)

	desc, err := s.Load(ctx, ref, &store.LoadOptions{Order: store.OrderDesc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, desc, 1)
	require.Equal(t, e3.ID, desc[0].ID)

	upTo, err := s.Load(ctx, ref, &store.LoadOptions{CreatedBefore: e1.CreatedAt})
	require.NoError(t, err)
	require.NotEmpty(t, upTo)
	require.Equal(t, e1.ID, upTo[0].ID)
}

func TestSQLAuditStore_AncestorsOf(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var stored []*audit.Entry
	for i := 0; i < 3; i++ {
		e, err := s.Append(ctx, articleEntry(audit.ActionUpdate, audit.Changes{"n": audit.Pair(i, i+1)}))
		require.NoError(t, err)
		stored = append(stored, e)
	}

	ancestors, err := store.AncestorsOf(ctx, s, stored[1])
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	require.Equal(t, stored[0].ID, ancestors[0].ID)
}
