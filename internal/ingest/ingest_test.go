package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localfind/internal/config"
	"localfind/internal/embedding"
	"localfind/internal/vecstore"
)

func testPipeline(t *testing.T, root string) (*Pipeline, *vecstore.Store) {
	t.Helper()
	store, err := vecstore.Open(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Folders = []string{root}
	cfg.DenyDirs = []string{"node_modules"}
	return New(cfg, embedding.NewDeterministic(0), store), store
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRebuildIndexesSupportedFiles(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.txt"), "alpha document text")
	mustWrite(t, filepath.Join(root, "sub", "b.md"), "# Notes\n\nsome body text\n")
	mustWrite(t, filepath.Join(root, "node_modules", "skip.txt"), "ignored")
	mustWrite(t, filepath.Join(root, ".hidden", "secret.txt"), "ignored")
	mustWrite(t, filepath.Join(root, "photo.png"), "not a document")

	p, store := testPipeline(t, root)
	stats, err := p.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesSeen)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 2, stats.Chunks)
	assert.Empty(t, stats.Failures)
	assert.Equal(t, 2, store.Status().Entries)

	vec, err := embedding.NewDeterministic(0).EmbedText(context.Background(), "alpha document text")
	require.NoError(t, err)
	paths := make(map[string]bool)
	hits, err := store.Query(context.Background(), vec, 2)
	require.NoError(t, err)
	for _, h := range hits {
		paths[filepath.Base(h.Entry.SourcePath)] = true
	}
	assert.True(t, paths["a.txt"])
}

func TestRebuildRecordsFailures(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "good.txt"), "readable text")
	mustWrite(t, filepath.Join(root, "broken.pdf"), "this is not a pdf")

	p, store := testPipeline(t, root)
	stats, err := p.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Contains(t, stats.Failures, filepath.Join(root, "broken.pdf"))
	assert.Equal(t, 1, store.Status().Entries)
}

func TestRebuildEmptyTree(t *testing.T) {
	p, store := testPipeline(t, t.TempDir())
	stats, err := p.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.FilesSeen)
	assert.Zero(t, store.Status().Entries)
	assert.False(t, p.Status().LastBuild.IsZero())
}

func TestRebuildOverUnchangedContentIsEquivalent(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "report.txt"),
		strings.Repeat("the quarterly report discusses revenue and costs. ", 60))
	mustWrite(t, filepath.Join(root, "notes.md"), "# Notes\n\nshort body\n")

	p, store := testPipeline(t, root)
	first, err := p.Rebuild(context.Background())
	require.NoError(t, err)
	require.Greater(t, first.Chunks, 2, "the long file should split into several chunks")

	queryVec, err := embedding.NewDeterministic(0).EmbedText(context.Background(), "revenue and costs")
	require.NoError(t, err)
	firstHits, err := store.Query(context.Background(), queryVec, 5)
	require.NoError(t, err)

	second, err := p.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Equal(t, first.Chunks, store.Status().Entries)

	secondHits, err := store.Query(context.Background(), queryVec, 5)
	require.NoError(t, err)
	require.Len(t, secondHits, len(firstHits))
	for i := range firstHits {
		assert.Equal(t, firstHits[i].Entry.SourcePath, secondHits[i].Entry.SourcePath)
		assert.Equal(t, firstHits[i].Entry.ChunkIndex, secondHits[i].Entry.ChunkIndex)
		assert.InDelta(t, firstHits[i].Similarity, secondHits[i].Similarity, 1e-5)
	}
}

func TestRebuildReplacesWholeIndex(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.txt"), "first")
	mustWrite(t, filepath.Join(root, "b.txt"), "second")

	p, store := testPipeline(t, root)
	_, err := p.Rebuild(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, store.Status().Entries)
	firstBuild := store.Status().BuildID

	require.NoError(t, os.Remove(filepath.Join(root, "b.txt")))
	_, err = p.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.Status().Entries)
	assert.NotEqual(t, firstBuild, store.Status().BuildID)
}

func TestRebuildCancelled(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.txt"), "text")

	p, _ := testPipeline(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Rebuild(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
