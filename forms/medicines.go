package forms

import (
	"fmt"
	"strings"
)

// MedicineEntry is the state of the medicines entry page
type MedicineEntry struct {
	Pending   string
	Medicines ItemList
}

func (*MedicineEntry) Route() string { return RouteMedicines }

func (m *MedicineEntry) Clone() PageState {
	c := *m
	c.Medicines = m.Medicines.clone()
	return &c
}

// AddMedicine appends the trimmed medicine name; see FoodEntry.AddIngredient
func (m *MedicineEntry) AddMedicine(raw string) bool {
	if !m.Medicines.Add(raw) {
		m.Pending = raw
		return false
	}
	m.Pending = ""
	return true
}

func (m *MedicineEntry) Clear() {
	m.Pending = ""
	m.Medicines.Clear()
}

// Summary lists the medicines numbered from 1
func (m *MedicineEntry) Summary() string {
	items := m.Medicines.Items()
	lines := make([]string, len(items))
	for i, med := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, med)
	}
	return "Medicines:\n" + strings.Join(lines, "\n")
}
