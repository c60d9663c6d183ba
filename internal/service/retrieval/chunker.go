package retrieval

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits long text into overlapping pieces, breaking on paragraphs, lines,
// then words before falling back to characters.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("invalid chunking: size=%d overlap=%d", size, overlap)
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}, nil
}

func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	out := chunks[:0]
	for _, ch := range chunks {
		if strings.TrimSpace(ch) != "" {
			out = append(out, ch)
		}
	}
	return out, nil
}
