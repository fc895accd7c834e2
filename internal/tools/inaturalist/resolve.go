package inaturalist

import (
	"context"
	"net/url"
)

// resolvePlace turns a place name into its iNaturalist place ID using a
// single-candidate autocomplete lookup. A zero ID with a nil error means
// nothing matched. Upstream failures come back unchanged so callers can
// surface them verbatim instead of reporting a missing place.
func (c *Client) resolvePlace(ctx context.Context, name string) (int, error) {
	return c.resolveAutocomplete(ctx, "/places/autocomplete", name)
}

// resolveTaxon turns a taxon name into its iNaturalist taxon ID. Same
// contract as resolvePlace.
func (c *Client) resolveTaxon(ctx context.Context, name string) (int, error) {
	return c.resolveAutocomplete(ctx, "/taxa/autocomplete", name)
}

func (c *Client) resolveAutocomplete(ctx context.Context, path, name string) (int, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("per_page", "1")

	var page struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := c.get(ctx, path, params, &page); err != nil {
		return 0, err
	}
	if len(page.Results) == 0 {
		return 0, nil
	}
	return page.Results[0].ID, nil
}
