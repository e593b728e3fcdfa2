package pricing

import "context"

// Strategy is the capability shared by the interchangeable valuation
// strategies. Selection happens once at the boundary, never by inspecting
// request shape inside the engine.
type Strategy interface {
	Name() string
	Description() string
}

// RoutePreference selects the path the distance oracle computes
type RoutePreference string

const (
	PreferenceSecure   RoutePreference = "secure"
	PreferenceShortest RoutePreference = "shortest"
	PreferenceInsecure RoutePreference = "insecure"
)

// DistanceOracle resolves named locations and computes jump paths. It is
// an external, fallible collaborator with no built-in retry.
type DistanceOracle interface {
	// ResolveSystem maps a system name to its id; ok is false when the
	// name is unknown.
	ResolveSystem(ctx context.Context, name string) (id int64, ok bool, err error)
	// Route returns the ordered system ids along the path, endpoints
	// included.
	Route(ctx context.Context, originID, destinationID int64, preference RoutePreference) ([]int64, error)
}
