package ranker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localfind/internal/timeparse"
)

func writeFile(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestRankOrderedAndBounded(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	for _, name := range []string{"report_a.txt", "report_b.txt", "report_c.txt", "report_d.txt", "misc.txt"} {
		writeFile(t, dir, name, now.Add(-48*time.Hour))
	}

	hits, err := Rank(context.Background(), Params{
		Roots:      []string{dir},
		Keywords:   []string{"report"},
		MaxResults: 3,
		Now:        now,
	})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	// Equal scores resolve by ascending path.
	assert.Equal(t, "report_a.txt", hits[0].Name)
	assert.Equal(t, "report_b.txt", hits[1].Name)
	assert.Equal(t, "report_c.txt", hits[2].Name)
}

func TestRankEmptyKeywordsBaseline(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "a.txt", now)
	writeFile(t, dir, "sub/b.pdf", now)
	writeFile(t, dir, ".git/config", now)       // denied directory
	writeFile(t, dir, "node_modules/x.js", now) // denied directory

	hits, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		DenyDirs: []string{"node_modules", ".git"},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Positive(t, h.Score)
		assert.GreaterOrEqual(t, h.Parts.Keyword, baselineScore)
	}
}

func TestRankInvoiceScenario(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "invoice_2023.pdf", time.Date(2023, 8, 14, 10, 0, 0, 0, time.Local))
	writeFile(t, dir, "notes.txt", now)
	writeFile(t, dir, "invoice_draft.txt", now.Add(-24*time.Hour))

	// "invoice 2023" with 2023 as a hard time filter: only the 2023 invoice
	// survives.
	window := &timeparse.TimeWindow{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
	}
	hits, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"invoice"},
		Window:   window,
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "invoice_2023.pdf", hits[0].Name)

	// Without the window the keyword still puts both invoices ahead of
	// notes.txt, which does not match at all.
	hits, err = Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"invoice"},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "invoice_draft.txt", hits[0].Name) // recency breaks the tie
	assert.Equal(t, "invoice_2023.pdf", hits[1].Name)
}

func TestRankExtensionFilterAndTypeBonus(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "deck.pptx", now)
	writeFile(t, dir, "deck.txt", now)

	hits, err := Rank(context.Background(), Params{
		Roots:     []string{dir},
		Keywords:  []string{"deck"},
		AllowExts: []string{".pptx"},
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "deck.pptx", hits[0].Name)
	assert.Equal(t, typeBonus, hits[0].Parts.TypeBonus)
}

func TestRankFuzzyKeyword(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "invoice_2023.pdf", now)

	// Misspelled keyword still matches via edit-distance similarity, at a
	// lower score than the exact form.
	fuzzy, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"invoce"},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, fuzzy, 1)

	exact, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"invoice"},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Less(t, fuzzy[0].Parts.Keyword, exact[0].Parts.Keyword)
	assert.Positive(t, fuzzy[0].Parts.Keyword)
}

func TestRankPhraseBonus(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "q3 budget review.pdf", now)
	writeFile(t, dir, "review of budget q3.pdf", now)

	hits, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"budget", "review"},
		Phrase:   "budget review",
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "q3 budget review.pdf", hits[0].Name)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRankMissingRootReported(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "a.txt", now)

	hits, err := Rank(context.Background(), Params{
		Roots: []string{filepath.Join(dir, "does-not-exist"), dir},
		Now:   now,
	})
	// The bad root is reported but the good root was still scanned.
	assert.Error(t, err)
	assert.Len(t, hits, 1)
}

func TestRankPartialKeywordMatch(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "budget.xlsx", now)

	full, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"budget"},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, full, 1)

	partial, err := Rank(context.Background(), Params{
		Roots:    []string{dir},
		Keywords: []string{"budget", "zzqyx"},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Less(t, partial[0].Parts.Keyword, full[0].Parts.Keyword)
}

func TestRankCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Rank(ctx, Params{Roots: []string{dir}})
	assert.ErrorIs(t, err, context.Canceled)
}
