// Package practices resolves practice codes and ids to display metadata.
package practices

// DefaultLogo is shown when a practice has no logo of its own.
const DefaultLogo = "/connectient-logo.png"

// Practice is a healthcare provider that owns appointments. Rows are managed
// outside this service and are read-only here.
type Practice struct {
	ID            string `json:"id"`
	Code          string `json:"practice_code"`
	Name          string `json:"name"`
	Logo          string `json:"logo,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Website       string `json:"website,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	City          string `json:"city,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
}

// ContactPhone returns the number patients should call, falling back when the
// practice has none on file.
func (p *Practice) ContactPhone(fallback string) string {
	if p != nil && p.Phone != "" {
		return p.Phone
	}
	return fallback
}
