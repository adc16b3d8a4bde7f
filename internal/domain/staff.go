package domain

import (
	"net/mail"
	"strings"
)

// Staff statuses accepted by the remote API.
const (
	StaffActive   = "active"
	StaffInactive = "inactive"
)

// Staff is a staff member record.
type Staff struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Status         string `json:"status"`
	Performance    int    `json:"performance"`
	Transactions   int    `json:"transactions"`
	LastActive     string `json:"lastActive,omitempty"`
	RecentActivity string `json:"recentActivity,omitempty"`
}

// NewStaff is the add-staff form.
type NewStaff struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Normalize trims every field.
func (s *NewStaff) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Role = strings.TrimSpace(s.Role)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
}

// Validate checks the form. Call Normalize first.
func (s NewStaff) Validate() error {
	errs := FieldErrors{}
	errs.require("name", s.Name)
	errs.require("role", s.Role)
	errs.require("phone", s.Phone)
	if errs.require("email", s.Email) {
		if addr, err := mail.ParseAddress(s.Email); err != nil || addr.Address != s.Email {
			errs["email"] = "must be a valid email address"
		}
	}
	return errs.OrNil()
}

// StaffStatusUpdate is the body of a status change.
type StaffStatusUpdate struct {
	Status string `json:"status"`
}

// Validate checks the requested status.
func (u StaffStatusUpdate) Validate() error {
	switch u.Status {
	case StaffActive, StaffInactive:
		return nil
	}
	return FieldErrors{"status": "must be one of: active, inactive"}
}

// StaffTransaction is one transaction recorded by a staff member.
type StaffTransaction struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Amount      Amount `json:"amount"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time"`
}
