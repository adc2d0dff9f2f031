package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tripdesk/tripdesk/internal/config"
	"github.com/tripdesk/tripdesk/internal/db"
	"github.com/tripdesk/tripdesk/internal/draft"
	"github.com/tripdesk/tripdesk/internal/logger"
	"github.com/tripdesk/tripdesk/internal/model"
	"github.com/tripdesk/tripdesk/internal/routes"
	"github.com/tripdesk/tripdesk/internal/store"
	"github.com/tripdesk/tripdesk/internal/util/compression"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// A missing .env is fine in production.
		os.Stderr.WriteString("No .env file loaded\n")
	}

	configPath := os.Getenv("TRIPDESK_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.LoadConfig(configPath); err != nil {
		os.Stderr.WriteString("Error loading config: " + err.Error() + "\n")
		os.Exit(1)
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level)
	config.SetLogger(l)
	db.SetLogger(l)
	store.SetLogger(l)
	draft.SetLogger(l)

	kv, closeFn, err := newKVStore(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("Error initializing draft storage")
	}
	defer closeFn()

	draftStore := draft.NewStore(kv, cfg.Drafts.KeyPrefix)
	if cfg.Drafts.SweepOnStart {
		removed := draftStore.Sweep()
		l.Info().Int("removed", removed).Msg("Startup draft sweep complete")
	}

	sessions := draft.NewSessions(draftStore, func(form model.FormType, entity model.EntityID) draft.Options {
		return draft.Options{
			Enabled:    cfg.Drafts.Enabled,
			SaveDelay:  time.Duration(cfg.Drafts.SaveDelayMs) * time.Millisecond,
			TTL:        time.Duration(cfg.Drafts.TTLHours) * time.Hour,
			LeaveGuard: draft.LogLeaveGuard{},
		}
	})
	handler := draft.NewHandler(sessions)

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow: /api/"))
	})

	mux.HandleFunc(routes.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc(routes.APIDraft, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ServeLoad(w, r)
		case http.MethodPut:
			handler.ServeSave(w, r)
		case http.MethodDelete:
			handler.ServeClear(w, r)
		default:
			http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("POST "+routes.APIDraftDismiss, handler.ServeDismiss)
	mux.HandleFunc("GET "+routes.APIDraftState, handler.ServeState)
	mux.HandleFunc("POST "+routes.APISubmissions, handler.ServeSubmit)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	l.Info().Str("addr", addr).Str("site", cfg.Site.Name).Msg("Server listening")
	l.Fatal().Err(http.ListenAndServe(addr, mux)).Msg("Server stopped")
}

// newKVStore builds the configured draft backend. The returned close
// function releases the underlying database, if any.
func newKVStore(cfg *config.Config) (store.KVStore, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	default:
		database := db.NewSQLite(cfg.Storage.SQLitePath)
		if err := database.InitDB(); err != nil {
			return nil, nil, err
		}
		kv := store.NewSQLiteStore(database, compression.ForName(cfg.Drafts.Compression))
		return kv, func() { database.Close() }, nil
	}
}
