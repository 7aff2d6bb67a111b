package clinicapi

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("clinicapi: unknown reference kind %q", kind)
	}
	var res ReferenceList
	if err := c.do(ctx, http.MethodGet, "/"+string(kind), nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// AddReference creates an entry. The response body is not read; callers
// re-fetch the list.
func (c *Client) AddReference(ctx context.Context, kind ReferenceKind, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("clinicapi: unknown reference kind %q", kind)
	}
	return c.do(ctx, http.MethodPost, "/"+string(kind), nil, referenceRequest{Name: name}, nil)
}

func (c *Client) UpdateReference(ctx context.Context, kind ReferenceKind, id int64, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("clinicapi: unknown reference kind %q", kind)
	}
	return c.do(ctx, http.MethodPut, idPath("/"+string(kind), id), nil, referenceRequest{Name: name}, nil)
}

func (c *Client) DeleteReference(ctx context.Context, kind ReferenceKind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("clinicapi: unknown reference kind %q", kind)
	}
	return c.do(ctx, http.MethodDelete, idPath("/"+string(kind), id), nil, nil, nil)
}
