package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/shopfeed/internal/domain"
	"github.com/phenrril/shopfeed/internal/schema"
)

type ProductLister interface {
	FindAll(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
}

type CatalogSyncer interface {
	SyncAll(ctx context.Context) error
}

type Server struct {
	mux      *http.ServeMux
	products ProductLister
	syncer   CatalogSyncer
}

func New(products ProductLister, syncer CatalogSyncer) http.Handler {
	s := &Server{mux: http.NewServeMux(), products: products, syncer: syncer}
	s.routes()
	// Recovery runs inside Logging so a recovered panic still produces an
	// access-log line with its 500 status.
	return Chain(s.mux,
		CORS,
		RequestID,
		Logging,
		Recovery,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/products", s.handleProducts)
	s.mux.HandleFunc("/products/update-all", s.handleUpdateAll)
	s.mux.HandleFunc("/products/export", s.handleExport)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "Method not allowed."})
		return
	}

	q, err := schema.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeQueryError(w, err)
		return
	}

	page, err := s.products.FindAll(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":     q.Page,
		"limit":    q.Limit,
		"total":    page.Total,
		"numPages": page.NumPages,
		"hasMore":  page.HasMore,
		"data":     page.Items,
	})
}

func (s *Server) handleUpdateAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "Method not allowed."})
		return
	}
	if err := s.syncer.SyncAll(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All products updated."})
}

// writeQueryError maps validation failures: structural problems carry the
// full field list, cross-field refinements carry a single field-scoped
// message.
func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error validating request querystring",
			"errors":  verr.Fields,
		})
		return
	}
	var rerr *schema.RangeError
	if errors.As(err, &rerr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": rerr.Error()})
		return
	}
	s.writeError(w, err)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found."})
		return
	}
	log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error."})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
