// Package logger builds configured *slog.Logger instances and provides
// attribute constructors that keep log field names consistent across the
// checkout services.
//
// New creates a logger from functional options:
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithAttr(slog.String("service", "checkout")),
//	)
//
// The attribute helpers in attr.go return empty attrs for nil values, so
// calls like log.Info("done", logger.Error(err)) need no nil check.
package logger
