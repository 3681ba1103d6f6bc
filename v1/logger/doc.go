// Package logger provides structured logging on top of Uber's Zap.
//
// Packages in this module accept a small Logger interface
// (Debug/Info/Warn/Error with an error and optional field maps) so that
// *LoggerClient, a mock, or nothing at all can be injected.
//
// Direct Usage:
//
//	log := logger.NewLoggerClient(logger.Config{
//	    Level:         logger.Debug,
//	    ServiceName:   "orders",
//	    EnableTracing: true,
//	})
//
//	log.Info("Schema resolved", nil, map[string]interface{}{
//	    "subject":     "orders-value",
//	    "registry_id": 42,
//	})
//
//	// adds trace_id and span_id when ctx carries a span
//	log.ErrorWithContext(ctx, "Registry request failed", err)
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,
//	    fx.Provide(func() logger.Config {
//	        return logger.Config{Level: os.Getenv("LOG_LEVEL")}
//	    }),
//	)
//
// Output is JSON on stderr with "timestamp", "level", "caller", "pid" and
// "service" fields.
package logger
