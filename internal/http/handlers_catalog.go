package http

import (
	"net/http"
	"strings"

	"zaman/internal/catalog"
	"zaman/internal/core"
	"zaman/internal/log"
)

type productsResponse struct {
	Products    []core.Product `json:"products"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
}

// handleListProducts lists the catalog, filtered by the optional type, min
// and q query parameters.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	minAmount, err := queryInt64(r, "min", 0)
	if err != nil || minAmount < 0 {
		BadRequestError("min must be a non-negative integer").Write(w)
		return
	}
	f := catalog.Filter{
		Type:      strings.TrimSpace(r.URL.Query().Get("type")),
		MinAmount: minAmount,
		Query:     sanitizeInput(r.URL.Query().Get("q")),
	}

	var products []core.Product
	resp := productsResponse{}
	if f == (catalog.Filter{}) {
		products, err = s.deps.Catalog.Products(ctx)
	} else {
		products, err = s.deps.Catalog.Match(ctx, f)
		resp.RedirectURL = catalog.RedirectURL(f)
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Catalog unavailable", log.FieldError, err)
		captureError(r, err)
		ErrorResponse(http.StatusServiceUnavailable, "catalog_unavailable", "Каталог временно недоступен.").Write(w)
		return
	}
	if products == nil {
		products = []core.Product{}
	}
	resp.Products = products
	OK(resp).Write(w)
}
