package assistant

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"zaman/internal/core"
	"zaman/internal/llm"
)

// Retriever finds the products most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]core.Product, error)
}

// ProductLister is the catalog as seen by the retriever.
type ProductLister interface {
	Products(ctx context.Context) ([]core.Product, error)
}

// EmbeddingRetriever ranks products by cosine similarity of embeddings.
// Product vectors are computed once per product ID and text.
type EmbeddingRetriever struct {
	client  llm.Client
	catalog ProductLister

	mu      sync.Mutex
	vectors map[string]productVector
}

type productVector struct {
	text string
	vec  []float64
}

func NewEmbeddingRetriever(client llm.Client, catalog ProductLister) *EmbeddingRetriever {
	return &EmbeddingRetriever{client: client, catalog: catalog, vectors: map[string]productVector{}}
}

func productText(p core.Product) string {
	return strings.Join(append([]string{p.Name, p.Type}, p.HalalTags...), " ")
}

func (r *EmbeddingRetriever) Retrieve(ctx context.Context, query string, k int) ([]core.Product, error) {
	products, err := r.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 || k <= 0 {
		return nil, nil
	}
	if err := r.embedMissing(ctx, products); err != nil {
		return nil, err
	}

	qv, err := r.client.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("query embedding: got %d vectors", len(qv))
	}

	type scored struct {
		p     core.Product
		score float64
	}
	r.mu.Lock()
	ranked := make([]scored, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, scored{p: p, score: cosine(qv[0], r.vectors[p.ID].vec)})
	}
	r.mu.Unlock()

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]core.Product, len(ranked))
	for i, s := range ranked {
		out[i] = s.p
	}
	return out, nil
}

func (r *EmbeddingRetriever) embedMissing(ctx context.Context, products []core.Product) error {
	r.mu.Lock()
	var missing []core.Product
	for _, p := range products {
		if v, ok := r.vectors[p.ID]; !ok || v.text != productText(p) {
			missing = append(missing, p)
		}
	}
	r.mu.Unlock()
	if len(missing) == 0 {
		return nil
	}

	texts := make([]string, len(missing))
	for i, p := range missing {
		texts[i] = productText(p)
	}
	vecs, err := r.client.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vecs) != len(missing) {
		return fmt.Errorf("product embeddings: got %d vectors for %d products", len(vecs), len(missing))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range missing {
		r.vectors[p.ID] = productVector{text: texts[i], vec: vecs[i]}
	}
	return nil
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
