package forms

// Routes served by the front-end
const (
	RouteHome      = "/"
	RouteProfile   = "/profile"
	RouteFood      = "/food"
	RouteMedicines = "/medicines"
	RouteResults   = "/output"
)

// PageState is the state owned by one mounted page
type PageState interface {
	// Route is the path the state belongs to
	Route() string
	// Clone returns a deep copy safe to render outside the owner's lock
	Clone() PageState
}

// NewPageState returns the initial state of a route, or false for unknown routes
func NewPageState(route string) (PageState, bool) {
	switch route {
	case RouteHome:
		return &Home{}, true
	case RouteProfile:
		return &Profile{}, true
	case RouteFood:
		return &FoodEntry{}, true
	case RouteMedicines:
		return &MedicineEntry{}, true
	case RouteResults:
		results := MockResults()
		return &results, true
	}
	return nil, false
}

// Home has no state
type Home struct{}

func (*Home) Route() string    { return RouteHome }
func (*Home) Clone() PageState { return &Home{} }
