package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		got, err := ExtractVideoID(tt.link)
		require.NoError(t, err, tt.link)
		assert.Equal(t, tt.want, got, tt.link)
	}
}

func TestExtractVideoIDRejects(t *testing.T) {
	for _, link := range []string{"", "   ", "https://example.com/video", "v="} {
		_, err := ExtractVideoID(link)
		assert.Error(t, err, link)
	}
}
