package revision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"auditrail/audit"
	"auditrail/audit/store"
	"auditrail/entity"
)

var article = audit.Ref{Type: "Article", ID: "1"}

// 三条历史：create name=A → update A→B → update B→C
func seedHistory(t *testing.T, s store.IAuditStore) []audit.Entry {
	t.Helper()
	ctx := context.Background()

	changesets := []audit.Changes{
		{"name": "A", "views": 0},
		{"name": audit.Pair("A", "B")},
		{"name": audit.Pair("B", "C"), "views": audit.Pair(0, 10)},
	}
	actions := []audit.Action{audit.ActionCreate, audit.ActionUpdate, audit.ActionUpdate}

	entries := make([]audit.Entry, 0, len(changesets))
	for i, changes := range changesets {
		stored, err := s.Append(ctx, &audit.Entry{
			Auditable: article,
			Action:    actions[i],
			Changes:   changes,
		})
		require.NoError(t, err)
		entries = append(entries, *stored)
	}
	return entries
}

func TestResolveVersion(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	for i := 1; i <= 3; i++ {
		resolved, err := ResolveVersion(ctx, s, article, i)
		require.NoError(t, err)
		require.NotNil(t, resolved)
		require.Equal(t, seeded[i-1].ID, resolved.ID)
	}

	// 小于 1 按 1 处理
	first, err := ResolveVersion(ctx, s, article, 0)
	require.NoError(t, err)
	require.Equal(t, seeded[0].ID, first.ID)

	// 超出范围不是错误
	missing, err := ResolveVersion(ctx, s, article, 4)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestFromVersion_ToVersion(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	from, err := FromVersion(ctx, s, article, 2)
	require.NoError(t, err)
	require.Len(t, from, 2)
	require.Equal(t, seeded[1].ID, from[0].ID)
	require.Equal(t, seeded[2].ID, from[1].ID)

	to, err := ToVersion(ctx, s, article, 2)
	require.NoError(t, err)
	require.Len(t, to, 2)
	require.Equal(t, seeded[0].ID, to[0].ID)
	require.Equal(t, seeded[1].ID, to[1].ID)

	// 未解析版本：FromVersion 空集，ToVersion 完整历史
	from, err = FromVersion(ctx, s, article, 9)
	require.NoError(t, err)
	require.Empty(t, from)

	to, err = ToVersion(ctx, s, article, 9)
	require.NoError(t, err)
	require.Len(t, to, 3)
}

func TestReconstructAttributes(t *testing.T) {
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	attrs := ReconstructAttributes(seeded[:2])
	require.Equal(t, map[string]any{"name": "B", "views": 0}, attrs)

	attrs = ReconstructAttributes(seeded)
	require.Equal(t, map[string]any{"name": "C", "views": 10}, attrs)

	// 幂等：重复重建结果一致
	require.Equal(t, attrs, ReconstructAttributes(seeded))

	require.Empty(t, ReconstructAttributes(nil))
}

func TestRevisionAt_LiveEntity(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	entities := entity.NewMemoryEntityStore()
	entities.DefineType("Article", "name", "views")
	_, err := entities.Create(ctx, "Article", map[string]any{"id": "1", "name": "C", "views": 10})
	require.NoError(t, err)

	rec := NewReconstructor(s, entities)

	inst, err := rec.RevisionAt(ctx, &seeded[1])
	require.NoError(t, err)
	require.Equal(t, "1", inst.EntityID())
	require.Equal(t, "B", inst.Attributes()["name"])
	require.Equal(t, 0, inst.Attributes()["views"])
}

func TestRevisionAt_DeletedEntity_DetachedInstance(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	entities := entity.NewMemoryEntityStore()
	entities.DefineType("Article", "name", "views")
	rec := NewReconstructor(s, entities)

	// 实体层查不到时在空白实例上重建，且不自动持久化
	inst, err := rec.RevisionAt(ctx, &seeded[2])
	require.NoError(t, err)
	require.Empty(t, inst.EntityID())
	require.Equal(t, "C", inst.Attributes()["name"])

	still, err := entities.Lookup(ctx, "Article", "1")
	require.NoError(t, err)
	require.Nil(t, still)
}

func TestRevisionAt_FrozenEntity_Cloned(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	entities := entity.NewMemoryEntityStore()
	entities.DefineType("Article", "name", "views")
	created, err := entities.Create(ctx, "Article", map[string]any{"id": "1", "name": "C"})
	require.NoError(t, err)
	created.(*entity.Record).Freeze()

	rec := NewReconstructor(s, entities)
	inst, err := rec.RevisionAt(ctx, &seeded[1])
	require.NoError(t, err)

	// 在脱离副本上赋值，原实例不被修改
	require.Equal(t, "B", inst.Attributes()["name"])
	require.Equal(t, "C", created.Attributes()["name"])
}

func TestRevisionAt_SchemaDrift_SilentSkip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	_, err := s.Append(ctx, &audit.Entry{
		Auditable: article,
		Action:    audit.ActionCreate,
		Changes:   audit.Changes{"name": "A", "legacy_column": "x"},
	})
	require.NoError(t, err)

	entities := entity.NewMemoryEntityStore()
	entities.DefineType("Article", "name")
	rec := NewReconstructor(s, entities)

	inst, err := rec.RevisionAtVersion(ctx, article, 1)
	require.NoError(t, err)
	require.Equal(t, "A", inst.Attributes()["name"])
	_, ok := inst.Attributes()["legacy_column"]
	require.False(t, ok)
}

func TestRevisionAtVersion_OutOfRange(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seedHistory(t, s)

	rec := NewReconstructor(s, entity.NewMemoryEntityStore())
	inst, err := rec.RevisionAtVersion(ctx, article, 7)
	require.NoError(t, err)
	require.Nil(t, inst)
}

func TestRevisionAtTime(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAuditStore()
	seeded := seedHistory(t, s)

	entities := entity.NewMemoryEntityStore()
	entities.DefineType("Article", "name", "views")
	rec := NewReconstructor(s, entities)

	inst, err := rec.RevisionAtTime(ctx, article, seeded[1].CreatedAt)
	require.NoError(t, err)
	require.NotNil(t, inst)
	require.Equal(t, "B", inst.Attributes()["name"])

	// 首条之前的时刻没有可用版本
	inst, err = rec.RevisionAtTime(ctx, article, seeded[0].CreatedAt.Add(-1))
	require.NoError(t, err)
	require.Nil(t, inst)
}
