package forms

import (
	"fmt"
	"strings"
)

// FoodEntry is the state of the food entry page
type FoodEntry struct {
	Dish        string
	Pending     string // ingredient input not yet added
	Ingredients ItemList
}

func (*FoodEntry) Route() string { return RouteFood }

func (f *FoodEntry) Clone() PageState {
	c := *f
	c.Ingredients = f.Ingredients.clone()
	return &c
}

// SetDish stores the dish name as typed
func (f *FoodEntry) SetDish(dish string) {
	f.Dish = dish
}

// AddIngredient appends the trimmed ingredient. The pending input is cleared
// only when the ingredient was accepted.
func (f *FoodEntry) AddIngredient(raw string) bool {
	if !f.Ingredients.Add(raw) {
		f.Pending = raw
		return false
	}
	f.Pending = ""
	return true
}

// Clear resets the dish name, the ingredient list and the pending input
func (f *FoodEntry) Clear() {
	f.Dish = ""
	f.Pending = ""
	f.Ingredients.Clear()
}

// Summary is the text shown when the entry is submitted
func (f *FoodEntry) Summary() string {
	return fmt.Sprintf("Dish: %s\nIngredients: %s", f.Dish, strings.Join(f.Ingredients.Items(), ", "))
}
