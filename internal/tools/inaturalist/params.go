package inaturalist

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

const (
	// maxObservationPageSize caps per_page on observation-scale listings
	maxObservationPageSize = 200
	// maxTaxaPageSize caps per_page on taxon autocomplete
	maxTaxaPageSize = 30
)

// toolBase carries the injectable API client shared by every handler. Tests
// substitute a client pointed at a local upstream double; production tools
// fall back to the process-wide shared client.
type toolBase struct {
	api *Client
}

func (b *toolBase) client(logger *logrus.Logger) *Client {
	if b.api != nil {
		return b.api
	}
	return defaultClient(logger)
}

func textResult(text string) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(text), nil
}

// Argument helpers for the map[string]any payload the MCP framework hands to
// Execute. Numbers arrive as float64 over JSON, but direct callers may pass
// native ints.

func stringArg(args map[string]any, key string) string {
	if value, ok := args[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	}
	return fallback
}

func floatArg(args map[string]any, key string) (float64, bool) {
	switch value := args[key].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	}
	return 0, false
}

func boolArg(args map[string]any, key string) (bool, bool) {
	if value, ok := args[key].(bool); ok {
		return value, true
	}
	return false, false
}

func clampPageSize(n, max int) int {
	if n > max {
		return max
	}
	return n
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// applyLocationFilter adds lat/lng/radius query parameters when both
// coordinates are present. The radius defaults to 10 km.
func applyLocationFilter(args map[string]any, params url.Values) {
	lat, latOK := floatArg(args, "lat")
	lng, lngOK := floatArg(args, "lng")
	if !latOK || !lngOK {
		return
	}
	params.Set("lat", formatCoord(lat))
	params.Set("lng", formatCoord(lng))
	radius := intArg(args, "radius", 0)
	if radius == 0 {
		radius = 10
	}
	params.Set("radius", strconv.Itoa(radius))
}

// applyDateAndGradeFilters copies the optional date-range, quality-grade and
// iconic-taxa filters into the query when present
func applyDateAndGradeFilters(args map[string]any, params url.Values) {
	for _, key := range []string{"d1", "d2", "quality_grade", "iconic_taxa"} {
		if value := stringArg(args, key); value != "" {
			params.Set(key, value)
		}
	}
}

// resolveNameFilters fills place_id and taxon_id from the name-based filters,
// resolving names through the autocomplete endpoints. A non-empty return is
// the final tool text: either an upstream error message verbatim, or the
// "could not find" guidance built from the given templates. The two outcomes
// must stay textually distinguishable.
func resolveNameFilters(ctx context.Context, c *Client, args map[string]any, params url.Values, placeMsg, taxonMsg string) string {
	placeID := intArg(args, "place_id", 0)
	if name := stringArg(args, "place_name"); name != "" && placeID == 0 {
		resolved, err := c.resolvePlace(ctx, name)
		if err != nil {
			return err.Error()
		}
		if resolved == 0 {
			return fmt.Sprintf(placeMsg, name)
		}
		placeID = resolved
	}
	if placeID != 0 {
		params.Set("place_id", strconv.Itoa(placeID))
	}

	taxonID := intArg(args, "taxon_id", 0)
	if name := stringArg(args, "taxon_name"); name != "" && taxonID == 0 {
		resolved, err := c.resolveTaxon(ctx, name)
		if err != nil {
			return err.Error()
		}
		if resolved == 0 {
			return fmt.Sprintf(taxonMsg, name)
		}
		taxonID = resolved
	}
	if taxonID != 0 {
		params.Set("taxon_id", strconv.Itoa(taxonID))
	}
	return ""
}
