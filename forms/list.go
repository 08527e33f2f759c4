// Package forms holds the page-local form states of the front-end: the profile,
// the food and medicine list editors and the mock results display.
package forms

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ItemList is an ordered list of user-entered strings. Duplicates are allowed
// and an item has no identity beyond its position.
type ItemList struct {
	items []string
}

// normalizeItem trims surrounding whitespace and composes the text to NFC, so
// "café" typed with a combining accent is stored like the precomposed form.
func normalizeItem(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Add appends the trimmed value. Empty or whitespace-only input is ignored and
// Add reports false.
func (l *ItemList) Add(raw string) bool {
	item := normalizeItem(raw)
	if item == "" {
		return false
	}
	l.items = append(l.items, item)
	return true
}

// Clear empties the list
func (l *ItemList) Clear() {
	l.items = nil
}

// Items returns a copy of the items in insertion order
func (l *ItemList) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

func (l *ItemList) Len() int {
	return len(l.items)
}

func (l ItemList) clone() ItemList {
	return ItemList{items: l.Items()}
}
