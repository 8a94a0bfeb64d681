// Package server serves the daemon's HTTP endpoints (metrics, health and
// version) and manages the listener lifecycle.
//
// # Basic Usage
//
//	mux := http.NewServeMux()
//	health.Mount(mux, checker, version, commit, buildTime)
//
//	srv := server.NewServer(&cfg.Server, mux)
//	if err := srv.Listen(); err != nil {
//	    return err
//	}
//	return srv.Serve(ctx)
//
// Serve blocks until ctx is canceled, then shuts down gracefully within
// ServerConfig.ShutdownTimeout.
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost first):
//  1. Recovery: turns handler panics into 500 responses
//  2. RequestID: reuses or assigns X-Request-ID
//  3. Logging: logs method, path, status and latency
//
// Successful requests are logged at debug level so scrapes stay quiet.
package server
