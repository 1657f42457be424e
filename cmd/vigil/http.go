package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// handleHTTPServer configures and starts the HTTP server exposing the
// live MJPEG stream, the alert websocket and the metrics endpoint. It
// shuts the server down when the context is cancelled.
func handleHTTPServer(ctx context.Context, addr string, live http.Handler, wsHandler http.Handler, metricsHandler http.Handler, wg *sync.WaitGroup, errc chan error, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/live", live)
	mux.Handle("/ws/alerts", wsHandler)
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: time.Second * 60}

	wg.Add(1)
	go func() {
		defer wg.Done()

		go func() {
			logger.Printf("HTTP server listening on %q", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				sendErr(ctx, errc, err)
			}
		}()

		<-ctx.Done()
		logger.Printf("shutting down HTTP server at %q", addr)

		// Shutdown gracefully with a 30s timeout.
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			logger.Printf("failed to shutdown: %v", err)
		}
	}()
}
