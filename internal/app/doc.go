// Package app wires the web tool together: configuration, logging and
// OpenTelemetry, the transformation registry, services, handlers and the
// HTTP server lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, config.yaml and LOGVIEW_* variables
//  2. Initialize logging and observability
//  3. Register the transformations and build the services
//  4. Set up middleware and routes
//  5. Start the package reference watcher and the HTTP server
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get
// server.shutdown_timeout to finish; the reference watcher and the telemetry
// providers are then closed. The package never calls os.Exit.
package app
