package pricing

import (
	"context"

	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"go.uber.org/zap"
)

// Service exposes the two valuation strategies to the HTTP surface:
// appraisal previews for the submission form and instant route quotes for
// the calculator.
type Service struct {
	gate      *identity.Gate
	appraiser *pricing.AppraisalQuoter
	router    *pricing.RouteQuoter
	logger    *zap.Logger
}

// NewService creates a pricing Service
func NewService(gate *identity.Gate, appraiser *pricing.AppraisalQuoter, router *pricing.RouteQuoter, logger *zap.Logger) *Service {
	return &Service{
		gate:      gate,
		appraiser: appraiser,
		router:    router,
		logger:    logger,
	}
}

// Preview is an appraisal valuation rendered for display. Jita is the raw
// market value, Quote the marked-up client price; the Short variants are
// the compact forms shown inline.
type Preview struct {
	Reward     string
	Jita       string
	JitaShort  string
	Quote      string
	QuoteShort string
	Volume     float64
	Multiplier int
}

// Appraise prices the appraisal behind code for an authorized member and
// formats the amounts for display.
func (s *Service) Appraise(ctx context.Context, actor *identity.Character, code string, multiplier int) (*Preview, error) {
	if err := s.gate.RequireAuthorized(ctx, actor); err != nil {
		return nil, err
	}

	quote, err := s.appraiser.Quote(ctx, code, multiplier)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("appraisal priced",
		zap.String("code", code),
		zap.Int("multiplier", quote.Multiplier),
		zap.String("reward", quote.Reward.String()))

	return &Preview{
		Reward:     pricing.Comma(quote.Reward),
		Jita:       pricing.Comma(quote.Reward),
		JitaShort:  pricing.Shorten(quote.Reward, 2),
		Quote:      pricing.Comma(quote.Quote),
		QuoteShort: pricing.Shorten(quote.Quote, 2),
		Volume:     quote.Volume,
		Multiplier: quote.Multiplier,
	}, nil
}

// RouteQuote computes an instant calculator quote. The calculator is
// public; failures are reported in-band on the returned quote.
func (s *Service) RouteQuote(ctx context.Context, req pricing.RouteRequest) pricing.RouteQuote {
	quote := s.router.Quote(ctx, req)
	if !quote.Valid {
		s.logger.Debug("route quote rejected",
			zap.String("origin", req.Origin),
			zap.String("destination", req.Destination),
			zap.String("reason", quote.Error))
	}
	return quote
}
