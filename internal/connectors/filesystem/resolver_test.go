package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{
			name:     "file:// URI is converted to local path",
			location: "file:///Users/test/documents/file.txt",
			want:     "/Users/test/documents/file.txt",
		},
		{
			name:     "file:// URI with spaces",
			location: "file:///Users/test/my documents/file.txt",
			want:     "/Users/test/my documents/file.txt",
		},
		{
			name:     "bare path passes through",
			location: "/Users/test/documents/file.txt",
			want:     "/Users/test/documents/file.txt",
		},
		{
			name:     "relative path is cleaned",
			location: "./docs/../notes//a.md",
			want:     "notes/a.md",
		},
		{
			name:     "empty stays empty",
			location: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.location))
		})
	}
}

func TestResolvePath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes"), ResolvePath("~/notes"))
	assert.Equal(t, filepath.Clean(home), ResolvePath("~"))
}
