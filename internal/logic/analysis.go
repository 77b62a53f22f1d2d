package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/snapstats/analyzer/internal/models"
)

type analysisService struct {
	names  NameResolver
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewAnalysisService(names NameResolver, logger *zap.Logger) AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{names: names, logger: logger.Sugar(), now: time.Now}
}

// Analyze runs the location, deck and card analyzers over the same dataset.
// They only read the dataset and each fills its own part of the report.
func (s *analysisService) Analyze(ctx context.Context, ds *models.Dataset) (*models.Report, error) {
	start := s.now()
	report := &models.Report{
		ID:          uuid.New().String(),
		Games:       ds.Len(),
		GeneratedAt: start.UTC(),
	}

	if ds.Len() == 0 {
		analysesRun.WithLabelValues("empty").Inc()
		return nil, ErrEmptyDataset
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := AnalyzeLocations(ds, s.names)
		if err != nil {
			return fmt.Errorf("location analysis: %w", err)
		}
		report.Locations = rows
		return ctx.Err()
	})

	g.Go(func() error {
		decks, err := AnalyzeDecks(ds, s.names)
		if err != nil {
			return fmt.Errorf("deck analysis: %w", err)
		}
		for key, d := range decks {
			if display := resolveName(s.names, d.Deck); key != display {
				s.logger.Warnw("Deck display name already taken, keyed by raw id",
					"deck", d.Deck, "display", display, "key", key)
			}
		}
		report.Decks = decks
		return ctx.Err()
	})

	g.Go(func() error {
		cards, err := AnalyzeCards(ds, s.names)
		if err != nil {
			return fmt.Errorf("card analysis: %w", err)
		}
		report.Cards = cards
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		analysesRun.WithLabelValues("error").Inc()
		s.logger.Errorw("Analysis failed", "error", err, "games", ds.Len())
		return nil, err
	}

	elapsed := s.now().Sub(start)
	analysisDuration.Observe(elapsed.Seconds())
	analysesRun.WithLabelValues("ok").Inc()
	s.logger.Infow("Analysis complete",
		"report", report.ID,
		"games", report.Games,
		"locations", len(report.Locations),
		"decks", len(report.Decks),
		"cards", len(report.Cards.Cards),
		"duration", elapsed,
	)
	return report, nil
}
