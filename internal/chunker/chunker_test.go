package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordText generates a text of n distinct words.
func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid defaults",
			cfg:  Config{ChunkSize: 500, ChunkOverlap: 100},
		},
		{
			name: "zero overlap",
			cfg:  Config{ChunkSize: 10, ChunkOverlap: 0},
		},
		{
			name:    "overlap equals size",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: 100},
			wantErr: true,
		},
		{
			name:    "overlap exceeds size",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: 200},
			wantErr: true,
		},
		{
			name:    "zero chunk size",
			cfg:     Config{ChunkSize: 0, ChunkOverlap: 0},
			wantErr: true,
		},
		{
			name:    "negative overlap",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	cfg := Config{ChunkSize: 500, ChunkOverlap: 100}

	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "one word", text: "hello"},
		{name: "exactly chunk size", text: wordText(500)},
		{name: "preserves original whitespace", text: "a  b\tc\nd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, cfg)
			require.NoError(t, err)
			require.Len(t, chunks, 1)
			assert.Equal(t, tt.text, chunks[0])
		})
	}
}

func TestSplit_OverlappingWindows(t *testing.T) {
	// 1200 words with size 500 / overlap 100 yields windows starting at
	// word offsets 0, 400 and 800.
	text := wordText(1200)
	chunks, err := Split(text, Config{ChunkSize: 500, ChunkOverlap: 100})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "w0", strings.Fields(chunks[0])[0])
	assert.Equal(t, "w400", strings.Fields(chunks[1])[0])
	assert.Equal(t, "w800", strings.Fields(chunks[2])[0])

	assert.Len(t, strings.Fields(chunks[0]), 500)
	assert.Len(t, strings.Fields(chunks[1]), 500)
	// Final chunk runs to the end of the text and may be shorter.
	assert.Len(t, strings.Fields(chunks[2]), 400)
}

func TestSplit_AdjacentChunksShareOverlap(t *testing.T) {
	text := wordText(30)
	chunks, err := Split(text, Config{ChunkSize: 10, ChunkOverlap: 4})
	require.NoError(t, err)
	require.True(t, len(chunks) > 1)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		// The first words of each window repeat the tail of the previous one.
		if len(prev) == 10 {
			assert.Equal(t, prev[6:], cur[:4], "chunk %d should overlap chunk %d", i, i-1)
		}
	}
}

func TestSplit_InvalidOverlapNeverLoops(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := Split(wordText(1000), Config{ChunkSize: 100, ChunkOverlap: 100})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}()
	select {
	case <-done:
	case <-t.Context().Done():
		t.Fatal("Split did not return")
	}
}

func TestSplit_CoversAllWords(t *testing.T) {
	text := wordText(997)
	chunks, err := Split(text, Config{ChunkSize: 100, ChunkOverlap: 25})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			seen[w] = true
		}
	}
	assert.Len(t, seen, 997)

	// Last chunk must end with the final word.
	last := strings.Fields(chunks[len(chunks)-1])
	assert.Equal(t, "w996", last[len(last)-1])
}
