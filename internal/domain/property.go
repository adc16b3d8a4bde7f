package domain

import "strings"

// Property statuses.
const (
	PropertyOperational = "Operational"
	PropertyMaintenance = "Maintenance"
)

// Property is a managed property record.
type Property struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	Image     string  `json:"image,omitempty"`
	Rooms     int     `json:"rooms"`
	Occupancy float64 `json:"occupancy"`
	Revenue   Amount  `json:"revenue"`
	Expenses  Amount  `json:"expenses"`
	Rating    float64 `json:"rating"`
	Status    string  `json:"status"`
}

// NewProperty is the add-property form.
type NewProperty struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Image    string `json:"image,omitempty"`
	Rooms    int    `json:"rooms"`
	Status   string `json:"status"`
}

// Normalize trims fields and defaults the status.
func (p *NewProperty) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Location = strings.TrimSpace(p.Location)
	p.Image = strings.TrimSpace(p.Image)
	p.Status = strings.TrimSpace(p.Status)
	if p.Status == "" {
		p.Status = PropertyOperational
	}
}

// Validate checks the form. Call Normalize first.
func (p NewProperty) Validate() error {
	errs := FieldErrors{}
	errs.require("name", p.Name)
	errs.require("location", p.Location)
	if p.Rooms < 1 {
		errs["rooms"] = "must be at least 1"
	}
	if p.Status != PropertyOperational && p.Status != PropertyMaintenance {
		errs["status"] = "must be one of: Operational, Maintenance"
	}
	return errs.OrNil()
}

// LaundryRecord logs a laundry batch for a property.
type LaundryRecord struct {
	Items int    `json:"items"`
	Cost  Amount `json:"cost"`
	Notes string `json:"notes,omitempty"`
}

// Validate checks the record.
func (l LaundryRecord) Validate() error {
	errs := FieldErrors{}
	if l.Items < 1 {
		errs["items"] = "must be at least 1"
	}
	if l.Cost.IsNegative() {
		errs["cost"] = "cannot be negative"
	}
	return errs.OrNil()
}

// CheckIn records a guest check-in at a property.
type CheckIn struct {
	GuestName string `json:"guestName"`
	Room      string `json:"room"`
	Nights    int    `json:"nights"`
	Amount    Amount `json:"amount"`
}

// Validate checks the record.
func (c *CheckIn) Validate() error {
	c.GuestName = strings.TrimSpace(c.GuestName)
	c.Room = strings.TrimSpace(c.Room)
	errs := FieldErrors{}
	errs.require("guestName", c.GuestName)
	errs.require("room", c.Room)
	if c.Nights < 1 {
		errs["nights"] = "must be at least 1"
	}
	return errs.OrNil()
}
