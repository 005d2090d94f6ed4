package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/wifitrack/internal/adapters/storage"
	"github.com/lcalzada-xor/wifitrack/internal/core/ports"
)

// Server exposes the published snapshot over a read-only HTTP API plus a
// websocket push channel, backup import/export and the Prometheus scrape
// endpoint.
type Server struct {
	addr      string
	source    SnapshotSource
	store     ports.ConfigStore
	WSManager *WSManager
}

// NewServer wires the HTTP surface. store may be nil, which disables the
// backup endpoints.
func NewServer(addr string, source SnapshotSource, store ports.ConfigStore) *Server {
	return &Server{
		addr:      addr,
		source:    source,
		store:     store,
		WSManager: NewWSManager(source),
	}
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/entries", s.handleEntries).Methods(http.MethodGet)
	r.HandleFunc("/api/counts", s.handleCounts).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	if s.store != nil {
		r.HandleFunc("/api/backup/networks", s.handleExportNetworks).Methods(http.MethodGet)
		r.HandleFunc("/api/backup/networks", s.handleImportNetworks).Methods(http.MethodPost)
		r.HandleFunc("/api/backup/subscriptions", s.handleExportSubscriptions).Methods(http.MethodGet)
		r.HandleFunc("/api/backup/subscriptions", s.handleImportSubscriptions).Methods(http.MethodPost)
	}

	return otelhttp.NewHandler(r, "wifitrack-server")
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.source.Snapshot())
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int{
		"saved_networks":      s.source.SavedNetworkCount(),
		"saved_subscriptions": s.source.SavedSubscriptionCount(),
	})
}

// handleExportNetworks streams the durable saved-network set as a tag/value
// XML backup document.
func (s *Server) handleExportNetworks(w http.ResponseWriter, r *http.Request) {
	configs, err := s.store.LoadStandardConfigs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	if err := storage.WriteNetworkList(w, configs); err != nil {
		slog.Error("failed to write network backup", "error", err)
	}
}

// handleImportNetworks parses a backup document and replaces the durable
// saved-network set. The live tracker state is untouched; the platform stays
// the source of truth until the next restart primes counts from the store.
func (s *Server) handleImportNetworks(w http.ResponseWriter, r *http.Request) {
	configs, err := storage.ReadNetworkList(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.SaveStandardConfigs(configs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"imported": len(configs)})
}

func (s *Server) handleExportSubscriptions(w http.ResponseWriter, r *http.Request) {
	configs, err := s.store.LoadPasspointConfigs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	if err := storage.WriteSubscriptionList(w, configs); err != nil {
		slog.Error("failed to write subscription backup", "error", err)
	}
}

func (s *Server) handleImportSubscriptions(w http.ResponseWriter, r *http.Request) {
	configs, err := storage.ReadSubscriptionList(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.SavePasspointConfigs(configs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"imported": len(configs)})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
