package pricing

import (
	"context"
	"fmt"

	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// margin is the fixed client-facing markup over market value
var margin = decimal.NewFromFloat(1.13)

// AppraisalItem is one line of an external market appraisal
type AppraisalItem struct {
	TypeID        int64
	MarketGroupID int64
	Name          string
	Quantity      float64
	Volume        float64
	SellValue     decimal.Decimal
}

// Appraisal is the parsed result of an external appraisal lookup
type Appraisal struct {
	Code        string
	Items       []AppraisalItem
	TotalSell   decimal.Decimal
	TotalVolume float64
}

// AppraisalClient fetches appraisals from the external appraisal service
type AppraisalClient interface {
	Fetch(ctx context.Context, code string) (*Appraisal, error)
}

// ExclusionList answers whether cargo is barred from the service
type ExclusionList interface {
	IsItemExcluded(ctx context.Context, typeID int64) (bool, error)
	IsMarketGroupExcluded(ctx context.Context, marketGroupID int64) (bool, error)
}

// VolumeLimit exposes the director-tunable maximum cargo volume
type VolumeLimit interface {
	MaxVolume(ctx context.Context) (float64, error)
}

// AppraisalQuote is the market-valuation result. Reward is what the
// courier is offered, Quote the marked-up client price.
type AppraisalQuote struct {
	Appraisal  *Appraisal
	Reward     decimal.Decimal
	Quote      decimal.Decimal
	Volume     float64
	Multiplier int
}

// AppraisalQuoter prices a job from an external market appraisal
type AppraisalQuoter struct {
	client     AppraisalClient
	exclusions ExclusionList
	limits     VolumeLimit
}

// NewAppraisalQuoter creates an AppraisalQuoter
func NewAppraisalQuoter(client AppraisalClient, exclusions ExclusionList, limits VolumeLimit) *AppraisalQuoter {
	return &AppraisalQuoter{
		client:     client,
		exclusions: exclusions,
		limits:     limits,
	}
}

// Name implements Strategy
func (q *AppraisalQuoter) Name() string { return "appraisal" }

// Description implements Strategy
func (q *AppraisalQuoter) Description() string {
	return "Market valuation from an external appraisal with a fixed 13% margin"
}

// Quote validates the appraisal behind code and computes reward and client
// price. Unparseable or empty appraisals, excluded cargo and oversized
// loads all fail with VALIDATION_ERROR.
func (q *AppraisalQuoter) Quote(ctx context.Context, code string, multiplier int) (*AppraisalQuote, error) {
	if multiplier < 1 {
		multiplier = 1
	}

	appraisal, err := q.client.Fetch(ctx, code)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid appraisal. Please check your link and try again.")
	}
	if len(appraisal.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid appraisal: no items found.")
	}

	for _, item := range appraisal.Items {
		excluded, err := q.exclusions.IsItemExcluded(ctx, item.TypeID)
		if err != nil {
			return nil, err
		}
		if !excluded {
			excluded, err = q.exclusions.IsMarketGroupExcluded(ctx, item.MarketGroupID)
			if err != nil {
				return nil, err
			}
		}
		if excluded {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("We do not haul %s.", item.Name))
		}
	}

	maxVolume, err := q.limits.MaxVolume(ctx)
	if err != nil {
		return nil, err
	}
	totalVolume := appraisal.TotalVolume * float64(multiplier)
	if maxVolume > 0 && totalVolume > maxVolume {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Volume %s m3 exceeds the maximum of %s m3.", Comma(decimal.NewFromFloat(totalVolume)), Comma(decimal.NewFromFloat(maxVolume))))
	}

	m := decimal.NewFromInt(int64(multiplier))
	reward := appraisal.TotalSell.Mul(m)

	return &AppraisalQuote{
		Appraisal:  appraisal,
		Reward:     reward,
		Quote:      reward.Mul(margin),
		Volume:     totalVolume,
		Multiplier: multiplier,
	}, nil
}
