package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicIsStable(t *testing.T) {
	d := NewDeterministic(0)

	a, err := d.EmbedText(context.Background(), "hello world")
	require.NoError(t, err)
	b, err := d.EmbedText(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 384)
}

func TestDeterministicDistinguishesTexts(t *testing.T) {
	d := NewDeterministic(16)

	a, err := d.EmbedText(context.Background(), "alpha")
	require.NoError(t, err)
	b, err := d.EmbedText(context.Background(), "beta")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 16)
}

func TestDeterministicVectorsAreUnitLength(t *testing.T) {
	d := NewDeterministic(64)
	vec, err := d.EmbedText(context.Background(), "some text")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestEmbedTextsMatchesEmbedText(t *testing.T) {
	d := NewDeterministic(32)
	ctx := context.Background()

	batch, err := d.EmbedTexts(ctx, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	single, err := d.EmbedText(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, single, batch[1])
}

func TestNormalize(t *testing.T) {
	vec := []float32{3, 4}
	Normalize(vec)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	// The zero vector stays put instead of dividing by zero.
	zero := []float32{0, 0}
	Normalize(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}
