// Package catalog loads the bank's product catalog and matches products
// against assistant requests.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"zaman/assets"
	"zaman/internal/cache"
	"zaman/internal/core"
	"zaman/internal/log"
)

// Catalog files looked up in the data directory, in order.
var catalogFiles = []string{"products.json", "products.local.json"}

const cacheKey = "products"

// Filter narrows the catalog. Zero fields do not filter.
type Filter struct {
	Type      string `json:"type,omitempty"`
	MinAmount int64  `json:"minAmount,omitempty"`
	Query     string `json:"query,omitempty"`
}

// Loader reads the catalog through a TTL cache. Concurrent misses share a
// single load.
type Loader struct {
	dataDir  string
	fallback fs.FS
	cache    cache.Cache[[]core.Product]
	group    singleflight.Group
	logger   *log.Logger
}

func NewLoader(dataDir string, c cache.Cache[[]core.Product], logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{
		dataDir:  dataDir,
		fallback: assets.DataFS,
		cache:    c,
		logger:   logger.WithComponent(log.ComponentCatalog),
	}
}

// Products returns the whole catalog.
func (l *Loader) Products(ctx context.Context) ([]core.Product, error) {
	if products, ok := l.cache.Get(cacheKey); ok {
		return products, nil
	}

	v, err, _ := l.group.Do(cacheKey, func() (any, error) {
		if products, ok := l.cache.Get(cacheKey); ok {
			return products, nil
		}
		products, source, err := l.load()
		if err != nil {
			return nil, err
		}
		l.cache.Set(cacheKey, products)
		l.logger.InfoContext(ctx, "Product catalog loaded",
			"source", source,
			log.FieldProducts, len(products))
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Product), nil
}

// Match loads the catalog and applies f.
func (l *Loader) Match(ctx context.Context, f Filter) ([]core.Product, error) {
	products, err := l.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Match(products, f), nil
}

// Invalidate forces the next read to hit the files again.
func (l *Loader) Invalidate() {
	l.cache.Delete(cacheKey)
}

func (l *Loader) load() ([]core.Product, string, error) {
	if l.dataDir != "" {
		for _, name := range catalogFiles {
			path := filepath.Join(l.dataDir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				if !os.IsNotExist(err) {
					l.logger.Warn("Cannot read catalog file, trying next", "path", path, log.FieldError, err)
				}
				continue
			}
			products, err := decode(data)
			if err != nil {
				l.logger.Warn("Invalid catalog file, trying next", "path", path, log.FieldError, err)
				continue
			}
			return products, path, nil
		}
	}

	data, err := fs.ReadFile(l.fallback, assets.ProductsPath)
	if err != nil {
		return nil, "", fmt.Errorf("read embedded catalog: %w", err)
	}
	products, err := decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("embedded catalog: %w", err)
	}
	return products, "embedded", nil
}

func decode(data []byte) ([]core.Product, error) {
	var products []core.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

// Match keeps products of the requested type that are affordable with
// f.MinAmount and mention f.Query in their name, type or halal tags.
func Match(products []core.Product, f Filter) []core.Product {
	typ := strings.TrimSpace(f.Type)
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := []core.Product{}
	for _, p := range products {
		if typ != "" && !strings.EqualFold(p.Type, typ) {
			continue
		}
		if f.MinAmount > 0 && p.MinAmount > f.MinAmount {
			continue
		}
		if query != "" && !mentions(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mentions(p core.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) || strings.Contains(strings.ToLower(p.Type), query) {
		return true
	}
	for _, tag := range p.HalalTags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// RedirectURL is the catalog page showing the products for f.
func RedirectURL(f Filter) string {
	q := url.Values{}
	if f.MinAmount > 0 {
		q.Set("min", strconv.FormatInt(f.MinAmount, 10))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q.Set("q", s)
	}
	if s := strings.TrimSpace(f.Type); s != "" {
		q.Set("type", s)
	}
	if len(q) == 0 {
		return "/catalog"
	}
	return "/catalog?" + q.Encode()
}
