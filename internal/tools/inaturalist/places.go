package inaturalist

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/wildsight/mcp-inaturalist/internal/registry"
)

// nearbyMargin pads the query coordinate into a bounding box for the
// nearby-places endpoint
const nearbyMargin = 0.5

// maxNearbyPlaces caps each rendered nearby-places group
const maxNearbyPlaces = 10

// SearchPlacesTool finds iNaturalist places by name
type SearchPlacesTool struct {
	toolBase
}

// NearbyPlacesTool lists standard and community places around a coordinate
type NearbyPlacesTool struct {
	toolBase
}

func init() {
	registry.Register(&SearchPlacesTool{})
	registry.Register(&NearbyPlacesTool{})
}

// Definition returns the search_places tool definition
func (t *SearchPlacesTool) Definition() mcp.Tool {
	return mcp.NewTool("search_places",
		mcp.WithDescription("Search for iNaturalist places by name. Returns place IDs you can use in other tools."),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("Place name to search for (e.g. \"Yellowstone\", \"Costa Rica\")"),
		),
		mcp.WithNumber("per_page", mcp.DefaultNumber(10), mcp.Description("Number of results (default 10)")),
	)
}

// Execute runs the place autocomplete search
func (t *SearchPlacesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing search_places")

	query := stringArg(args, "q")
	if query == "" {
		return nil, fmt.Errorf("missing required parameter: q")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(intArg(args, "per_page", 10)))

	var result placesPage
	if err := c.get(ctx, "/places/autocomplete", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult(fmt.Sprintf("No places found matching '%s'.", query))
	}

	lines := []string{fmt.Sprintf("Found %d places matching '%s':\n", len(result.Results), query)}
	for _, place := range result.Results {
		lines = append(lines, formatPlace(place))
	}
	return textResult(strings.Join(lines, "\n"))
}

// Definition returns the get_nearby_places tool definition
func (t *NearbyPlacesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_nearby_places",
		mcp.WithDescription("Find iNaturalist places near a set of coordinates."),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude"),
		),
		mcp.WithNumber("lng",
			mcp.Required(),
			mcp.Description("Longitude"),
		),
	)
}

// Execute queries a padded bounding box around the coordinate and renders the
// standard and community place groups
func (t *NearbyPlacesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing get_nearby_places")

	lat, latOK := floatArg(args, "lat")
	lng, lngOK := floatArg(args, "lng")
	if !latOK || !lngOK {
		return nil, fmt.Errorf("missing required parameters: lat and lng")
	}

	params := url.Values{}
	params.Set("nelat", formatCoord(lat+nearbyMargin))
	params.Set("nelng", formatCoord(lng+nearbyMargin))
	params.Set("swlat", formatCoord(lat-nearbyMargin))
	params.Set("swlng", formatCoord(lng-nearbyMargin))

	var result nearbyPlacesPage
	if err := c.get(ctx, "/places/nearby", params, &result); err != nil {
		return textResult(err.Error())
	}

	standard := result.Results.Standard
	community := result.Results.Community
	if len(standard) == 0 && len(community) == 0 {
		return textResult(fmt.Sprintf("No places found near (%s, %s).", formatCoord(lat), formatCoord(lng)))
	}

	var lines []string
	if len(standard) > 0 {
		lines = append(lines, fmt.Sprintf("**Standard places** (%d):\n", len(standard)))
		for _, place := range capPlaces(standard, maxNearbyPlaces) {
			lines = append(lines, formatPlace(place))
		}
		lines = append(lines, "")
	}
	if len(community) > 0 {
		lines = append(lines, fmt.Sprintf("**Community places** (%d):\n", len(community)))
		for _, place := range capPlaces(community, maxNearbyPlaces) {
			lines = append(lines, formatPlace(place))
		}
	}
	return textResult(strings.Join(lines, "\n"))
}

func capPlaces(places []Place, n int) []Place {
	if len(places) > n {
		return places[:n]
	}
	return places
}
