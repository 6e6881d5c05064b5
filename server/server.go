package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	v1 "github.com/epustaka/epustaka/api/v1"
	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/lending"
	"github.com/epustaka/epustaka/store"
	"github.com/epustaka/epustaka/version"
	"github.com/epustaka/epustaka/worker"
)

// StartServer starts the HTTP server
func StartServer(ctx context.Context, store *store.Store, engine *lending.Engine, uploadPool worker.WorkPool) (*http.Server, error) {
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Opts.Host, config.Opts.Port),
		Handler: setupHandler(store, engine, uploadPool),
	}

	startHTTPServer(server)

	return server, nil
}

func startHTTPServer(server *http.Server) {
	go func() {
		fmt.Println("Starting HTTP server on:", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			fmt.Println("HTTP server error", err)
			os.Exit(1)
		}
	}()
}

func setupHandler(store *store.Store, engine *lending.Engine, uploadPool worker.WorkPool) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware)

	apiHandler := v1.NewHandler(store, engine, uploadPool)
	v1.Server(router, apiHandler)

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			http.Error(w, "Database Connection Error", http.StatusInternalServerError)
			return
		}

		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Name("version")

	return router
}
