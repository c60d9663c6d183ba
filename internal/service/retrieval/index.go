package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

type Document struct {
	ID        string
	Text      string
	Chunk     int
	Embedding []float32
}

// Index stores embedded chunks grouped by namespace (one namespace per video).
type Index interface {
	Replace(ctx context.Context, namespace string, docs []Document) error
	Query(ctx context.Context, namespace string, embedding []float32, k int) ([]Document, error)
	Delete(ctx context.Context, namespace string) error
}

// MemoryIndex is an exact cosine-similarity index held in process memory.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string][]Document
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string][]Document)}
}

func (m *MemoryIndex) Replace(_ context.Context, namespace string, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[namespace] = append([]Document(nil), docs...)
	return nil
}

func (m *MemoryIndex) Delete(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, namespace)
	return nil
}

// Namespaces reports how many namespaces currently hold documents.
func (m *MemoryIndex) Namespaces() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) Query(_ context.Context, namespace string, embedding []float32, k int) ([]Document, error) {
	m.mu.RLock()
	docs := m.docs[namespace]
	m.mu.RUnlock()

	type scored struct {
		doc   Document
		score float64
	}
	ranked := make([]scored, 0, len(docs))
	for _, d := range docs {
		ranked = append(ranked, scored{doc: d, score: Cosine(embedding, d.Embedding)})
	}
	// ties keep chunk order
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Document, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].doc
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is zero or the
// lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ChromaIndex keeps one Chroma collection per namespace.
type ChromaIndex struct {
	client   chromago.Client
	embedder embeddings.EmbeddingFunction
}

func NewChromaIndex(baseURL string, embedder Embedder) (*ChromaIndex, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	return &ChromaIndex{client: client, embedder: chromaEmbedding{embedder: embedder}}, nil
}

func (c *ChromaIndex) Close() error {
	return c.client.Close()
}

func (c *ChromaIndex) collection(ctx context.Context, namespace string) (chromago.Collection, error) {
	return c.client.GetOrCreateCollection(ctx, collectionName(namespace),
		chromago.WithEmbeddingFunctionCreate(c.embedder),
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "YouTube transcript chunks"),
				chromago.NewStringAttribute("video_id", namespace),
			),
		),
	)
}

func (c *ChromaIndex) Replace(ctx context.Context, namespace string, docs []Document) error {
	col, err := c.collection(ctx, namespace)
	if err != nil {
		return fmt.Errorf("chroma collection: %w", err)
	}

	if err := col.Delete(ctx, chromago.WithWhereDelete(chromago.EqString("video_id", namespace))); err != nil {
		return fmt.Errorf("chroma delete: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	ids := make([]chromago.DocumentID, len(docs))
	texts := make([]string, len(docs))
	vectors := make([]embeddings.Embedding, len(docs))
	metas := make([]chromago.DocumentMetadata, len(docs))
	for i, d := range docs {
		ids[i] = chromago.DocumentID(d.ID)
		texts[i] = d.Text
		vectors[i] = embeddings.NewEmbeddingFromFloat32(d.Embedding)
		metas[i] = chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("video_id", namespace),
			chromago.NewIntAttribute("chunk_num", int64(d.Chunk)),
		)
	}

	err = col.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(vectors...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("chroma add: %w", err)
	}
	return nil
}

func (c *ChromaIndex) Query(ctx context.Context, namespace string, embedding []float32, k int) ([]Document, error) {
	col, err := c.collection(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("chroma collection: %w", err)
	}

	results, err := col.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("chroma query: %w", err)
	}

	groups := results.GetDocumentsGroups()
	if len(groups) == 0 {
		return nil, nil
	}
	docs := make([]Document, 0, len(groups[0]))
	for _, doc := range groups[0] {
		if text := doc.ContentString(); text != "" {
			docs = append(docs, Document{Text: text})
		}
	}
	return docs, nil
}

// Delete drops the namespace's collection.
func (c *ChromaIndex) Delete(ctx context.Context, namespace string) error {
	if err := c.client.DeleteCollection(ctx, collectionName(namespace)); err != nil {
		return fmt.Errorf("chroma delete collection: %w", err)
	}
	return nil
}

// chromaEmbedding hands collections our embedder. Chunks always arrive embedded; without
// an embedding function chroma-go would load its bundled ONNX model.
type chromaEmbedding struct {
	embedder Embedder
}

func (e chromaEmbedding) EmbedDocuments(ctx context.Context, texts []string) ([]embeddings.Embedding, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbeddingsFromFloat32(vectors)
}

func (e chromaEmbedding) EmbedQuery(ctx context.Context, text string) (embeddings.Embedding, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbeddingFromFloat32(vector), nil
}

// collectionName maps a video id onto Chroma's naming rules (alphanumeric at both ends).
func collectionName(namespace string) string {
	return "yt-" + namespace + "-chunks"
}
