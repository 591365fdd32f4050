package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Default(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "x")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "x")
	require.NoError(t, err)

	assert.Len(t, a, DefaultDimension)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, []string{"x", "x"}, m.Texts())
}

func TestMockEmbedder_Reset(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1}, nil
	}
	_, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Empty(t, m.Texts())
	assert.Nil(t, m.EmbedTextFunc)
}
