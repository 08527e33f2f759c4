package forms

// Alerts shown by the profile actions. Nothing is persisted.
const (
	ProfileSavedAlert   = "Profile Saved ✅ (Later this will be sent to backend/cloud)"
	ProfileDeletedAlert = "Profile Deleted ❌"
)

// Profile is the state of the profile page. Every field is kept as typed.
type Profile struct {
	Name        string
	DateOfBirth string
	Age         string
	Conditions  string
	Allergies   string
}

func (*Profile) Route() string { return RouteProfile }

func (p *Profile) Clone() PageState {
	c := *p
	return &c
}

// Update replaces every field with the submitted values
func (p *Profile) Update(fields Profile) {
	*p = fields
}

// Reset empties every field
func (p *Profile) Reset() {
	*p = Profile{}
}
