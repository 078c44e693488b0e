// Package httpserver wraps http.Server with graceful shutdown driven by
// context cancellation or SIGINT/SIGTERM.
//
//	srv := httpserver.New(httpserver.WithAddr(":8080"), httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", "error", err)
//	}
package httpserver
