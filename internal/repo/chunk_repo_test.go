package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmalov/spravka/internal/model"
	"github.com/pmalov/spravka/internal/repo"
)

func TestChunkRepoInsertCountSearch(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	chunks := repo.NewChunkRepo(db)
	collection := fmt.Sprintf("col-%d", time.Now().UnixNano())

	count, err := chunks.Count(context.Background(), collection)
	require.NoError(t, err)
	require.Zero(t, count)

	results, err := chunks.SearchNearest(context.Background(), collection, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, results, "empty collection yields empty result, not an error")

	err = chunks.InsertBatch(context.Background(), collection, []model.DocumentChunk{
		{ChunkID: "chunk_0", Content: "Статья 5: льгота X", Embedding: []float32{1, 0, 0}},
		{ChunkID: "chunk_1", Content: "Статья 6: льгота Y", Embedding: []float32{0, 1, 0}},
		{ChunkID: "chunk_2", Content: "Статья 7: порядок выплат", Embedding: []float32{0, 0, 1}},
	})
	require.NoError(t, err)

	count, err = chunks.Count(context.Background(), collection)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	results, err = chunks.SearchNearest(context.Background(), collection, []float32{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "chunk_0", results[0].ChunkID)
	require.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestChunkRepoUpsertByID(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	chunks := repo.NewChunkRepo(db)
	collection := fmt.Sprintf("col-upsert-%d", time.Now().UnixNano())

	require.NoError(t, chunks.InsertBatch(context.Background(), collection, []model.DocumentChunk{
		{ChunkID: "chunk_0", Content: "старый текст", Embedding: []float32{1, 0}},
	}))
	require.NoError(t, chunks.InsertBatch(context.Background(), collection, []model.DocumentChunk{
		{ChunkID: "chunk_0", Content: "новый текст", Embedding: []float32{0, 1}},
	}))

	count, err := chunks.Count(context.Background(), collection)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	results, err := chunks.SearchNearest(context.Background(), collection, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "новый текст", results[0].Content)
}

func TestChunkRepoDeleteCollection(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	chunks := repo.NewChunkRepo(db)
	collection := fmt.Sprintf("col-del-%d", time.Now().UnixNano())

	require.NoError(t, chunks.InsertBatch(context.Background(), collection, []model.DocumentChunk{
		{ChunkID: "chunk_0", Content: "x", Embedding: []float32{1}},
		{ChunkID: "chunk_1", Content: "y", Embedding: []float32{2}},
	}))

	deleted, err := chunks.DeleteCollection(context.Background(), collection)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	count, err := chunks.Count(context.Background(), collection)
	require.NoError(t, err)
	require.Zero(t, count)
}
