package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ashureev/propdash/internal/domain"
)

const pathProperties = "/api/properties/"

func propertyPath(id, suffix string) string {
	return pathProperties + url.PathEscape(id) + suffix
}

// ListProperties returns every managed property.
func (c *Client) ListProperties(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	err := c.Call(ctx, http.MethodGet, pathProperties, nil, &out)
	return out, err
}

// AddProperty creates a property and returns the stored record.
func (c *Client) AddProperty(ctx context.Context, p domain.NewProperty) (domain.Property, error) {
	var out domain.Property
	err := c.Call(ctx, http.MethodPost, pathProperties, p, &out)
	return out, err
}

// RecordLaundry logs a laundry batch. The server's reply is passed through.
func (c *Client) RecordLaundry(ctx context.Context, id string, l domain.LaundryRecord) (json.RawMessage, error) {
	return c.Start(ctx, http.MethodPost, propertyPath(id, "/laundry"), l).Wait()
}

// CheckIn records a guest check-in. The server's reply is passed through.
func (c *Client) CheckIn(ctx context.Context, id string, ci domain.CheckIn) (json.RawMessage, error) {
	return c.Start(ctx, http.MethodPost, propertyPath(id, "/check-in"), ci).Wait()
}

// DeleteProperty removes a property.
func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.Call(ctx, http.MethodDelete, propertyPath(id, ""), nil, nil)
}
