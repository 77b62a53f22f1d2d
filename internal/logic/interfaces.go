package logic

import (
	"context"

	"github.com/snapstats/analyzer/internal/models"
)

// NameResolver substitutes display names for raw identifiers. Implementations
// return the input unchanged when they have no mapping.
type NameResolver interface {
	Resolve(raw string) string
}

// AnalysisService runs every analyzer over one dataset.
type AnalysisService interface {
	Analyze(ctx context.Context, ds *models.Dataset) (*models.Report, error)
}

func resolveName(names NameResolver, raw string) string {
	if names == nil {
		return raw
	}
	return names.Resolve(raw)
}
