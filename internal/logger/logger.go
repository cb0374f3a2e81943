package logger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/nusa-erp/erp-api/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithActor adds the acting user to logger
func WithActor(logger *zap.Logger, actor domain.Actor) *zap.Logger {
	return logger.With(
		zap.String("actor_id", actor.ID),
		zap.String("actor_name", actor.Name),
	)
}

// WithDocument adds document identity to logger
func WithDocument(logger *zap.Logger, id uuid.UUID, docType domain.DocumentType, number string) *zap.Logger {
	return logger.With(
		zap.String("document_id", id.String()),
		zap.String("document_type", string(docType)),
		zap.String("document_number", number),
	)
}
