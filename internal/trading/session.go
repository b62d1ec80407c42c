package trading

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dyike/CoinCortex/config"
	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/dataflows"
	"github.com/dyike/CoinCortex/internal/indicators"
	"github.com/dyike/CoinCortex/internal/logger"
	"github.com/dyike/CoinCortex/internal/models"
	"github.com/dyike/CoinCortex/internal/narrative"
)

// AnalysisSession runs resolve, fetch, compute, narrate for one asset. The
// first failing stage aborts the rest.
type AnalysisSession struct {
	config   *config.Config
	resolver *dataflows.Resolver
	source   dataflows.Source
	narrator narrative.Narrator
	prompts  *narrative.PromptBuilder
	progress io.Writer
	now      func() time.Time
}

type Option func(*AnalysisSession)

// WithSource replaces the market source built from the config.
func WithSource(src dataflows.Source) Option {
	return func(s *AnalysisSession) { s.source = src }
}

// WithNarrator replaces the narrator built from the config.
func WithNarrator(n narrative.Narrator) Option {
	return func(s *AnalysisSession) { s.narrator = n }
}

// WithProgress sets where stage messages are written.
func WithProgress(w io.Writer) Option {
	return func(s *AnalysisSession) { s.progress = w }
}

func NewAnalysisSession(cfg *config.Config, opts ...Option) *AnalysisSession {
	s := &AnalysisSession{
		config:   cfg,
		resolver: dataflows.NewResolver(),
		prompts:  narrative.NewPromptBuilder(cfg.MaxPromptChars),
		progress: io.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute analyzes query. Configuration is validated before any network
// call is made.
func (s *AnalysisSession) Execute(ctx context.Context, query string) (*models.AnalysisReport, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	asset := s.resolver.Resolve(query)
	if asset.ID == "" {
		return nil, apperr.Wrap(apperr.ErrNotFound, "no asset identifier provided")
	}
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	logger.Infof("session: %q resolved to %q (alias %v)", query, asset.ID, asset.Aliased)

	s.step("📊 Fetching market data for '%s' from %s...", asset.ID, s.source.Name())
	series, err := s.source.FetchSeries(ctx, asset, dataflows.Window{Days: s.config.HistoryDays, Currency: s.config.VsCurrency})
	if err != nil {
		return nil, err
	}

	set := indicators.Compute(series, indicators.Params{SMAWindows: s.config.SMAWindows, RSIPeriod: s.config.RSIPeriod})
	latest, hasLatest := series.Latest()
	logger.Infof("session: %d samples, indicators %v", series.Len(), set.Names())

	report := &models.AnalysisReport{
		Asset:      asset,
		Latest:     latest,
		Currency:   series.Currency,
		Source:     series.Source,
		Samples:    series.Len(),
		Indicators: set,
		Provider:   s.narrator.Provider(),
		Model:      s.narrator.Model(),
	}

	if s.config.News {
		s.step("📰 Fetching news sentiment for '%s'...", asset.Name)
		report.News, _ = narrative.NewsSentiment(ctx, s.narrator, s.prompts, asset.Name)
	}

	msgs, err := s.prompts.Analysis(ctx, narrative.PromptInput{
		Asset:      asset,
		Latest:     latest,
		HasLatest:  hasLatest,
		Currency:   series.Currency,
		Indicators: set,
		News:       report.News,
		Structured: s.config.Structured,
	})
	if err != nil {
		return nil, err
	}
	report.Prompt = msgs[len(msgs)-1].Content

	req := narrative.Request{Messages: msgs}
	if s.config.Structured {
		req.Schema = narrative.VerdictSchema()
	}
	s.step("🤖 Consulting %s (%s)...", report.Provider, report.Model)
	text, err := s.narrator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	report.Narrative = text

	if s.config.Structured {
		verdict, err := narrative.ParseVerdict(text)
		if err != nil {
			return nil, err
		}
		report.Verdict = verdict
	}
	report.CreatedAt = s.now().UTC()
	return report, nil
}

func (s *AnalysisSession) initialize(ctx context.Context) error {
	if s.source == nil {
		src, err := dataflows.NewSource(s.config)
		if err != nil {
			return apperr.Wrap(apperr.ErrConfiguration, "%w", err)
		}
		s.source = src
	}
	if s.narrator == nil {
		n, err := narrative.New(ctx, s.config)
		if err != nil {
			if apperr.Kind(err) != nil {
				return err
			}
			return apperr.Wrap(apperr.ErrConfiguration, "%w", err)
		}
		s.narrator = n
	}
	return nil
}

func (s *AnalysisSession) step(format string, args ...any) {
	fmt.Fprintf(s.progress, format+"\n", args...)
}
