// Package dev provides the development server and hot reload functionality.
//
// This package implements:
//   - File watching for page, manifest, and asset changes
//   - Route table rebuilding on page changes
//   - WebSocket-based browser refresh
//   - Error overlay in browser
//
// # Architecture
//
// The development server consists of several components:
//
//   - Watcher: Monitors the file system for changes
//   - Server: Serves the application shell, static output, and route
//     inspection endpoints
//   - ReloadServer: Notifies browsers of changes via WebSocket
//
// # Usage
//
//	srv, err := dev.NewServer(dev.ServerOptions{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Hot reload can be disabled via metamon.json (dev.hotReload=false).
// Watch paths default to the pages directory plus any entries in
// dev.watch.
//
// # Inspection Endpoints
//
// The server exposes route table internals under /_metamon:
//
//	GET /_metamon/routes        // Current route table as a manifest
//	GET /_metamon/resolve?path= // Resolve a path against the table
//	GET /_metamon/issues        // Diagnostic sweep findings
//	GET /_metamon/metrics       // Prometheus metrics
//
// # Hot Reload Protocol
//
// The browser connects to /_metamon/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "routes", "count": 12}   // Route table rebuilt
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
