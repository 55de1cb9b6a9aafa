package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkType_IsValid(t *testing.T) {
	assert.True(t, ChunkFixedSize.IsValid())
	assert.True(t, ChunkParagraph.IsValid())
	assert.False(t, ChunkType("sentence").IsValid())
	assert.False(t, ChunkType("").IsValid())
}

func TestChunkType_Description(t *testing.T) {
	assert.Contains(t, ChunkFixedSize.Description(), "Fixed size")
	assert.Contains(t, ChunkParagraph.Description(), "Paragraph")
	assert.Equal(t, "unknown", ChunkType("bogus").Description())
}

func TestParseChunkType(t *testing.T) {
	tests := []struct {
		in   string
		want ChunkType
	}{
		{"fixed", ChunkFixedSize},
		{"fixed_size", ChunkFixedSize},
		{"Fixed-Size", ChunkFixedSize},
		{"paragraph", ChunkParagraph},
		{" PARAGRAPH ", ChunkParagraph},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChunkType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := ParseChunkType("sentence")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "sentence")
	})
}
