package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sberindex/ndi-cli/internal/index"
	"github.com/sberindex/ndi-cli/internal/model"
	"github.com/sberindex/ndi-cli/internal/store"
)

var servePort int

// recordCache holds the last computed index so repeated API hits do not
// recompute against the database. Recompute happens on demand after TTL.
type recordCache struct {
	mu      sync.Mutex
	records []model.Record
	fetched time.Time
	ttl     time.Duration
	src     store.Source
}

func (c *recordCache) get(r *http.Request) ([]model.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.records != nil && time.Since(c.fetched) < c.ttl {
		return c.records, nil
	}
	records, err := index.NewEngine(c.src).Run(r.Context())
	if err != nil {
		return nil, err
	}
	c.records = records
	c.fetched = time.Now()
	return records, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the computed index over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		src, err := initSource(ctx)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck

		cache := &recordCache{src: src, ttl: 5 * time.Minute}
		mux := newServeMux(cache)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newServeMux(cache *recordCache) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/ndi", func(w http.ResponseWriter, r *http.Request) {
		records, err := cache.get(r)
		if err != nil {
			zap.L().Error("index computation failed", zap.Error(err))
			http.Error(w, `{"error":"index computation failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})

	mux.HandleFunc("GET /api/ndi/{id}", func(w http.ResponseWriter, r *http.Request) {
		records, err := cache.get(r)
		if err != nil {
			zap.L().Error("index computation failed", zap.Error(err))
			http.Error(w, `{"error":"index computation failed"}`, http.StatusInternalServerError)
			return
		}
		id := r.PathValue("id")
		for _, rec := range records {
			if fmt.Sprintf("%d", rec.SettlementID) == id {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(rec)
				return
			}
		}
		http.Error(w, `{"error":"settlement not found"}`, http.StatusNotFound)
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
