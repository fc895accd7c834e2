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

// UniversalSearchTool searches taxa, places, projects and users in one query
type UniversalSearchTool struct {
	toolBase
}

func init() {
	registry.Register(&UniversalSearchTool{})
}

// Definition returns the inaturalist_search tool definition
func (t *UniversalSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("inaturalist_search",
		mcp.WithDescription("Search across all of iNaturalist — taxa, places, projects, and users at once."),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("Search query (e.g. \"monarch butterfly migration\")"),
		),
		mcp.WithString("sources", mcp.Description("Comma-separated types to include: \"taxa\", \"places\", \"projects\", \"users\" (default: all)")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(10), mcp.Description("Number of results (default 10)")),
	)
}

// Execute runs the universal search, dispatching per-record formatting on the
// record's type tag
func (t *UniversalSearchTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing inaturalist_search")

	query := stringArg(args, "q")
	if query == "" {
		return nil, fmt.Errorf("missing required parameter: q")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(intArg(args, "per_page", 10)))
	if sources := stringArg(args, "sources"); sources != "" {
		params.Set("sources", sources)
	}

	var result searchPage
	if err := c.get(ctx, "/search", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult(fmt.Sprintf("No results found for '%s'.", query))
	}

	lines := []string{fmt.Sprintf("Found %d results for '%s':\n", result.TotalResults, query)}
	for _, item := range result.Results {
		lines = append(lines, formatSearchRecord(item), "")
	}
	return textResult(strings.Join(lines, "\n"))
}
