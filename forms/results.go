package forms

import "strings"

// Placeholders rendered for empty result lists
const (
	NoResultsPlaceholder      = "No results yet."
	NoAlternativesPlaceholder = "No alternatives suggested yet."
)

// FoodStatus pairs a food with its safety label
type FoodStatus struct {
	Food   string `json:"food"`
	Status string `json:"status"`
}

// IsSafe reports whether the label marks the food as safe
func (s FoodStatus) IsSafe() bool {
	return strings.Contains(s.Status, "Safe")
}

// Alternative is a suggested replacement food
type Alternative struct {
	Food string `json:"food"`
}

// Results is the state of the results page
type Results struct {
	Statuses     []FoodStatus  `json:"results"`
	Alternatives []Alternative `json:"alternatives"`
}

func (*Results) Route() string { return RouteResults }

func (r *Results) Clone() PageState {
	return &Results{
		Statuses:     append([]FoodStatus(nil), r.Statuses...),
		Alternatives: append([]Alternative(nil), r.Alternatives...),
	}
}

// Stand-ins for a future backend response
var (
	mockStatuses = []FoodStatus{
		{Food: "Chicken Curry", Status: "Safe ✅"},
		{Food: "Peanut Sauce", Status: "Dangerous ⚠️"},
	}
	mockAlternatives = []Alternative{
		{Food: "Grilled Chicken"},
		{Food: "Vegetable Soup"},
	}
)

// MockResults returns a fresh copy of the mock results
func MockResults() Results {
	return Results{
		Statuses:     append([]FoodStatus(nil), mockStatuses...),
		Alternatives: append([]Alternative(nil), mockAlternatives...),
	}
}
