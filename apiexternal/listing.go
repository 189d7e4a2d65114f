package apiexternal

import (
	"bytes"
	"context"
	"net/http"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/crud"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// FetchPage lists one page of endpoint. A 404 is an empty listing.
func (c *Client) FetchPage(ctx context.Context, endpoint string, params crud.Params) (crud.Listing, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, endpoint, params.Encode(), nil, &raw)
	if isNotFound(err) {
		return crud.Listing{Items: []crud.Row{}}, nil
	}
	if err != nil {
		return crud.Listing{}, err
	}
	listing, err := decodeListing(raw)
	if err != nil {
		return crud.Listing{}, apperrors.WrapWithMessageFor(apperrors.ErrClassParsing, http.MethodGet, endpoint, err)
	}
	return listing, nil
}

// FetchAll lists every record of endpoint for lookups. A 404 is an empty list.
func (c *Client) FetchAll(ctx context.Context, endpoint string) ([]crud.Row, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, endpoint, "", nil, &raw)
	if isNotFound(err) {
		return []crud.Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	listing, err := decodeListing(raw)
	if err != nil {
		return nil, apperrors.WrapWithMessageFor(apperrors.ErrClassParsing, http.MethodGet, endpoint, err)
	}
	return listing.Items, nil
}

// decodeListing normalizes both a bare array and an {items, total} envelope.
// A missing total is the number of items.
func decodeListing(raw json.RawMessage) (crud.Listing, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return crud.Listing{Items: []crud.Row{}}, nil
	}

	var listing crud.Listing
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &listing.Items); err != nil {
			return crud.Listing{}, errors.Wrap(err, "decode list")
		}
		listing.Total = len(listing.Items)
	} else {
		var env struct {
			Items []crud.Row `json:"items"`
			Total *int       `json:"total"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return crud.Listing{}, errors.Wrap(err, "decode envelope")
		}
		listing.Items = env.Items
		if env.Total != nil {
			listing.Total = *env.Total
		} else {
			listing.Total = len(env.Items)
		}
	}

	items := listing.Items[:0]
	for _, r := range listing.Items {
		if r != nil {
			items = append(items, r)
		}
	}
	listing.Items = items
	if listing.Items == nil {
		listing.Items = []crud.Row{}
	}
	return listing, nil
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
