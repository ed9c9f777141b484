// Package config provides configuration types and loading for svcinfo.
//
// The configuration is a YAML document with a metadata block and a spec
// block covering the HTTP server, format negotiation, rate limiting,
// readiness checks and observability. Values may reference environment
// variables with ${VAR} or ${VAR:-default}; a literal dollar sign is
// written as $$.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("svcinfo.yaml")
//	if err != nil {
//	    return err
//	}
//
// LoadConfig applies defaults and validates the result. An empty path
// yields DefaultConfig.
//
// # File Watching
//
//	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
//	    srv.ApplyConfig(cfg)
//	}, config.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start(ctx); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
package config
