package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

// MaxBodySize limits the size of uploaded match logs to 16MB
const MaxBodySize = 16 << 20

// Pinger is the part of a Redis client the readiness check needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	Analysis logic.AnalysisService
	Redis    Pinger // optional
	Logger   *zap.Logger
	// Defaults apply when a request omits a query parameter.
	Defaults    models.AnalyzeParams
	MaxBodySize int64
}

type Handler struct {
	analysis    logic.AnalysisService
	redis       Pinger
	logger      *zap.SugaredLogger
	validator   *validator.Validate
	defaults    models.AnalyzeParams
	maxBodySize int64
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = MaxBodySize
	}
	if cfg.Defaults.Padding == "" {
		cfg.Defaults.Padding = models.DefaultPadding
	}
	if cfg.Defaults.Delimiter == "" {
		cfg.Defaults.Delimiter = ","
	}
	if cfg.Defaults.CardSort == "" {
		cfg.Defaults.CardSort = models.SortByAppearances
	}
	return &Handler{
		analysis:    cfg.Analysis,
		redis:       cfg.Redis,
		logger:      cfg.Logger.Sugar(),
		validator:   validator.New(),
		defaults:    cfg.Defaults,
		maxBodySize: cfg.MaxBodySize,
	}
}
