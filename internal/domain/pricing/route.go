package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// RouteType classifies a delivery route for rate selection
type RouteType string

const (
	RouteHighsec    RouteType = "highsec"
	RouteLowsec     RouteType = "lowsec"
	RouteProvidence RouteType = "providence"
	RouteZarzakh    RouteType = "zarzakh"
	RouteThera      RouteType = "thera"
)

// IsValid checks if the route type is known
func (r RouteType) IsValid() bool {
	switch r {
	case RouteHighsec, RouteLowsec, RouteProvidence, RouteZarzakh, RouteThera:
		return true
	}
	return false
}

// Preference returns the oracle routing preference for the route type.
// Only highsec asks for a secure path; everything else takes the shortest.
func (r RouteType) Preference() RoutePreference {
	if r == RouteHighsec {
		return PreferenceSecure
	}
	return PreferenceShortest
}

// Rate card. Volumes are m³, amounts ISK.
const (
	minReward = 4_500_000

	dstMaxVolume       = 62_500
	freighterMaxVolume = 340_000

	highsecDSTRate       = 1_500_000
	highsecFreighterRate = 2_250_000
	highsecHeavyRate     = 3_000_000
	providenceRate       = 3_000_000
	dangerousRate        = 5_000_000

	highsecCollateralFloor = 1_000_000_000
)

var (
	highsecSurchargeRate    = decimal.NewFromFloat(0.01)
	providenceSurchargeRate = decimal.NewFromFloat(0.02)
	dangerousSurchargeRate  = decimal.NewFromFloat(0.03)

	million = decimal.NewFromInt(1_000_000)
)

// RouteRequest is the input of the instant quote calculator
type RouteRequest struct {
	Origin      string
	Destination string
	Volume      float64
	Collateral  decimal.Decimal
	RouteType   RouteType
}

// RouteQuote is the calculator result. Failures are reported in-band:
// Valid false with Error set and Price zero, never a propagated error.
type RouteQuote struct {
	Price     decimal.Decimal `json:"price"`
	Jumps     int             `json:"jumps"`
	Breakdown string          `json:"breakdown"`
	Valid     bool            `json:"valid"`
	Error     string          `json:"error,omitempty"`
}

// RouteQuoter prices a delivery from jump distance, volume and collateral
type RouteQuoter struct {
	oracle DistanceOracle
}

// NewRouteQuoter creates a RouteQuoter backed by the given oracle
func NewRouteQuoter(oracle DistanceOracle) *RouteQuoter {
	return &RouteQuoter{oracle: oracle}
}

// Name implements Strategy
func (q *RouteQuoter) Name() string { return "route" }

// Description implements Strategy
func (q *RouteQuoter) Description() string {
	return "Route pricing from jump count, volume tier and collateral surcharge"
}

// Quote computes the reward for a route. The floor of minReward applies to
// every valid quote.
func (q *RouteQuoter) Quote(ctx context.Context, req RouteRequest) RouteQuote {
	if !req.RouteType.IsValid() {
		return invalidQuote(fmt.Sprintf("Unknown route type %q", req.RouteType))
	}

	jumps, err := q.jumps(ctx, req.Origin, req.Destination, req.RouteType.Preference())
	if err != nil {
		return invalidQuote(err.Error())
	}

	ratePerJump := rateFor(req.RouteType, req.Volume)
	surcharge := surchargeFor(req.RouteType, req.Collateral)

	price := decimal.NewFromInt(int64(jumps)).Mul(decimal.NewFromInt(ratePerJump)).Add(surcharge)
	if price.LessThan(decimal.NewFromInt(minReward)) {
		price = decimal.NewFromInt(minReward)
	}

	return RouteQuote{
		Price: price,
		Jumps: jumps,
		Breakdown: fmt.Sprintf("%d jumps @ %sM/j + Collateral Fee: %sM",
			jumps,
			decimal.NewFromInt(ratePerJump).Div(million).StringFixed(2),
			surcharge.Div(million).StringFixed(2)),
		Valid: true,
	}
}

// jumps resolves both endpoints and counts hops along the oracle's path
func (q *RouteQuoter) jumps(ctx context.Context, origin, destination string, preference RoutePreference) (int, error) {
	originID, ok, err := q.oracle.ResolveSystem(ctx, origin)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errInvalidSystemName
	}

	destinationID, ok, err := q.oracle.ResolveSystem(ctx, destination)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errInvalidSystemName
	}

	route, err := q.oracle.Route(ctx, originID, destinationID, preference)
	if err != nil {
		return 0, err
	}

	jumps := len(route) - 1
	if jumps < 0 {
		jumps = 0
	}
	return jumps, nil
}

var errInvalidSystemName = fmt.Errorf("Invalid system name")

func rateFor(routeType RouteType, volume float64) int64 {
	switch routeType {
	case RouteHighsec:
		switch {
		case volume <= dstMaxVolume:
			return highsecDSTRate
		case volume <= freighterMaxVolume:
			return highsecFreighterRate
		default:
			return highsecHeavyRate
		}
	case RouteProvidence:
		return providenceRate
	default:
		return dangerousRate
	}
}

func surchargeFor(routeType RouteType, collateral decimal.Decimal) decimal.Decimal {
	switch routeType {
	case RouteHighsec:
		floor := decimal.NewFromInt(highsecCollateralFloor)
		if collateral.GreaterThan(floor) {
			return collateral.Sub(floor).Mul(highsecSurchargeRate)
		}
		return decimal.Zero
	case RouteProvidence:
		return collateral.Mul(providenceSurchargeRate)
	default:
		return collateral.Mul(dangerousSurchargeRate)
	}
}

func invalidQuote(message string) RouteQuote {
	return RouteQuote{
		Price:     decimal.Zero,
		Jumps:     0,
		Breakdown: "Error",
		Valid:     false,
		Error:     message,
	}
}
