package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is what a retrieval run hands to the summariser.
type Result struct {
	Chunks  int
	Context []string
}

// Retriever chunks a document, indexes it and returns the k chunks closest to a question.
type Retriever struct {
	chunker  *Chunker
	embedder Embedder
	index    Index
	topK     int
	logger   *zap.Logger
}

func NewRetriever(chunker *Chunker, embedder Embedder, index Index, topK int, logger *zap.Logger) *Retriever {
	if index == nil {
		index = NewMemoryIndex()
	}
	return &Retriever{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		topK:     topK,
		logger:   logger,
	}
}

func (r *Retriever) EmbedderName() string {
	return r.embedder.Name()
}

func (r *Retriever) Retrieve(ctx context.Context, namespace, text, question string) (*Result, error) {
	started := time.Now()

	chunks, err := r.chunker.Split(text)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	vectors, err := r.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, err
	}

	// Runs index under a private key that is dropped on return.
	key := namespace + "-" + uuid.NewString()[:8]

	docs := make([]Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = Document{
			ID:        fmt.Sprintf("%s-chunk%d", namespace, i),
			Text:      ch,
			Chunk:     i,
			Embedding: vectors[i],
		}
	}
	defer r.release(ctx, key)
	if err := r.index.Replace(ctx, key, docs); err != nil {
		return nil, err
	}

	query, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := r.index.Query(ctx, key, query, r.topK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(hits))
	for i, h := range hits {
		contexts[i] = h.Text
	}

	r.logger.Debug("Retrieved context",
		zap.String("namespace", namespace),
		zap.Int("chunks", len(chunks)),
		zap.Int("hits", len(hits)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &Result{Chunks: len(chunks), Context: contexts}, nil
}

func (r *Retriever) release(ctx context.Context, key string) {
	if err := r.index.Delete(context.WithoutCancel(ctx), key); err != nil {
		r.logger.Warn("Failed to drop retrieval index", zap.String("key", key), zap.Error(err))
	}
}
