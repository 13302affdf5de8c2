package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
)

type doc struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	CreatedAt int64  `json:"created_at"`
}

func TestMemoryGetWriteDelete(t *testing.T) {
	ms := NewMemory()
	ctx := context.Background()

	assert.NoError(t, ms.Write(ctx, "posts/p1", doc{ID: "p1", UserID: "u1", CreatedAt: 100}))

	var got doc
	assert.NoError(t, ms.Get(ctx, "posts/p1", &got))
	assert.Equal(t, "p1", got.ID)

	assert.NoError(t, ms.Delete(ctx, "posts/p1"))
	err := ms.Get(ctx, "posts/p1", &got)
	assert.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestMemoryListOrderingAndCursor(t *testing.T) {
	ms := NewMemory()
	ctx := context.Background()
	assert.NoError(t, ms.Write(ctx, "posts/p1", doc{ID: "p1", CreatedAt: 100}))
	assert.NoError(t, ms.Write(ctx, "posts/p2", doc{ID: "p2", CreatedAt: 300}))
	assert.NoError(t, ms.Write(ctx, "posts/p3", doc{ID: "p3", CreatedAt: 200}))

	docs, err := ms.List(ctx, "posts", ListOptions{})
	assert.NoError(t, err)
	assert.Len(t, docs, 3)
	// created_at décroissant
	assert.Equal(t, "posts/p2", docs[0].Path)
	assert.Equal(t, "posts/p3", docs[1].Path)

	// Before exclusif + Limit
	docs, err = ms.List(ctx, "posts", ListOptions{Before: 300, Limit: 1})
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "posts/p3", docs[0].Path)
}

func TestMemoryListDoesNotCrossCollections(t *testing.T) {
	ms := NewMemory()
	ctx := context.Background()
	assert.NoError(t, ms.Write(ctx, "likes/p1/u1", doc{ID: "u1", CreatedAt: 100}))
	assert.NoError(t, ms.Write(ctx, "likes/p2/u1", doc{ID: "u1", CreatedAt: 200}))

	docs, err := ms.List(ctx, "likes/p1", ListOptions{})
	assert.NoError(t, err)
	assert.Len(t, docs, 1)

	n, err := ms.Count(ctx, "likes/p1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryQuery(t *testing.T) {
	ms := NewMemory()
	ctx := context.Background()
	assert.NoError(t, ms.Write(ctx, "posts/p1", doc{ID: "p1", UserID: "alice", CreatedAt: 100}))
	assert.NoError(t, ms.Write(ctx, "posts/p2", doc{ID: "p2", UserID: "bob", CreatedAt: 200}))
	assert.NoError(t, ms.Write(ctx, "posts/p3", doc{ID: "p3", UserID: "alice", CreatedAt: 300}))

	docs, err := ms.Query(ctx, "posts", "user_id", "alice")
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
}
