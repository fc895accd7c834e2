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

// SearchProjectsTool finds community projects by query, location or place
type SearchProjectsTool struct {
	toolBase
}

func init() {
	registry.Register(&SearchProjectsTool{})
}

// Definition returns the search_projects tool definition
func (t *SearchProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_projects",
		mcp.WithDescription("Search for iNaturalist community projects (bioblitzes, surveys, regional biodiversity projects)."),
		mcp.WithString("q", mcp.Description("Search query (e.g. \"birds Sydney\", \"butterflies\")")),
		mcp.WithNumber("lat", mcp.Description("Latitude to find nearby projects")),
		mcp.WithNumber("lng", mcp.Description("Longitude to find nearby projects")),
		mcp.WithNumber("place_id", mcp.Description("iNaturalist place ID to filter by")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(10), mcp.Description("Number of results (default 10)")),
	)
}

// Execute runs the project search
func (t *SearchProjectsTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing search_projects")

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(intArg(args, "per_page", 10)))
	if query := stringArg(args, "q"); query != "" {
		params.Set("q", query)
	}
	lat, latOK := floatArg(args, "lat")
	lng, lngOK := floatArg(args, "lng")
	if latOK && lngOK {
		params.Set("lat", formatCoord(lat))
		params.Set("lng", formatCoord(lng))
	}
	if placeID := intArg(args, "place_id", 0); placeID != 0 {
		params.Set("place_id", strconv.Itoa(placeID))
	}

	var result projectsPage
	if err := c.get(ctx, "/projects", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult("No projects found matching your criteria.")
	}

	lines := []string{fmt.Sprintf("Found %d projects (showing %d):\n", result.TotalResults, len(result.Results))}
	for _, project := range result.Results {
		lines = append(lines, formatProject(project), "")
	}
	return textResult(strings.Join(lines, "\n"))
}
