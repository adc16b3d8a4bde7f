package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ashureev/propdash/internal/domain"
)

const pathStaff = "/api/staff"

func staffPath(id string, suffix string) string {
	return pathStaff + "/" + url.PathEscape(id) + suffix
}

// ListStaff returns every staff member.
func (c *Client) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	var out []domain.Staff
	err := c.Call(ctx, http.MethodGet, pathStaff+"/all", nil, &out)
	return out, err
}

// AddStaff creates a staff member and returns the stored record.
func (c *Client) AddStaff(ctx context.Context, s domain.NewStaff) (domain.Staff, error) {
	var out domain.Staff
	err := c.Call(ctx, http.MethodPost, pathStaff+"/add", s, &out)
	return out, err
}

// SetStaffStatus switches a staff member between active and inactive.
func (c *Client) SetStaffStatus(ctx context.Context, id string, u domain.StaffStatusUpdate) (domain.Staff, error) {
	var out domain.Staff
	err := c.Call(ctx, http.MethodPut, staffPath(id, "/status"), u, &out)
	return out, err
}

// StaffTransactions lists the transactions recorded by a staff member.
func (c *Client) StaffTransactions(ctx context.Context, id string) ([]domain.StaffTransaction, error) {
	var out []domain.StaffTransaction
	err := c.Call(ctx, http.MethodGet, staffPath(id, "/transactions"), nil, &out)
	return out, err
}

// DeleteStaff removes a staff member.
func (c *Client) DeleteStaff(ctx context.Context, id string) error {
	return c.Call(ctx, http.MethodDelete, staffPath(id, ""), nil, nil)
}
