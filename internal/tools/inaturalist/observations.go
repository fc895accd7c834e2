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
	"github.com/wildsight/mcp-inaturalist/internal/tools"
)

// SearchObservationsTool searches wildlife observations by location, species,
// date and quality filters
type SearchObservationsTool struct {
	toolBase
}

// SpeciesCountsTool lists species observed at a location ranked by
// observation count
type SpeciesCountsTool struct {
	toolBase
}

func init() {
	registry.Register(&SearchObservationsTool{})
	registry.Register(&SpeciesCountsTool{})
}

// Definition returns the search_observations tool definition
func (t *SearchObservationsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_observations",
		mcp.WithDescription("Search iNaturalist observations by location, species, date, and more."),
		mcp.WithNumber("lat", mcp.Description("Latitude for location-based search")),
		mcp.WithNumber("lng", mcp.Description("Longitude for location-based search")),
		mcp.WithNumber("radius", mcp.Description("Search radius in km (use with lat/lng, default 10)")),
		mcp.WithString("place_name", mcp.Description("Place name to search within (e.g. \"Australia\", \"Yellowstone\")")),
		mcp.WithNumber("place_id", mcp.Description("iNaturalist place ID to search within")),
		mcp.WithString("taxon_name", mcp.Description("Species or taxon common/scientific name to filter by")),
		mcp.WithNumber("taxon_id", mcp.Description("iNaturalist taxon ID to filter by")),
		mcp.WithString("d1", mcp.Description("Start date (YYYY-MM-DD)")),
		mcp.WithString("d2", mcp.Description("End date (YYYY-MM-DD)")),
		mcp.WithString("quality_grade",
			mcp.Description("Filter by observation quality"),
			mcp.Enum("research", "needs_id", "casual"),
		),
		mcp.WithString("iconic_taxa", mcp.Description("Filter by group: Aves, Mammalia, Reptilia, Amphibia, Actinopterygii, Mollusca, Arachnida, Insecta, Plantae, Fungi, etc.")),
		mcp.WithNumber("page", mcp.DefaultNumber(1), mcp.Description("Page number")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(20), mcp.Description("Results per page (default 20, max 200)")),
	)
}

// Execute runs the observation search
func (t *SearchObservationsTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing search_observations")

	page := intArg(args, "page", 1)
	perPage := clampPageSize(intArg(args, "per_page", 20), maxObservationPageSize)

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	applyLocationFilter(args, params)
	if msg := resolveNameFilters(ctx, c, args, params,
		"Could not find a place matching '%s'. Try a different name or use lat/lng.",
		"Could not find a taxon matching '%s'. Try a different name or use taxon_id.",
	); msg != "" {
		return textResult(msg)
	}
	applyDateAndGradeFilters(args, params)

	var result observationsPage
	if err := c.get(ctx, "/observations", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult("No observations found matching your criteria.")
	}

	lines := []string{fmt.Sprintf("Found %d observations (showing page %d, %d results):\n", result.TotalResults, page, len(result.Results))}
	for _, obs := range result.Results {
		lines = append(lines, formatObservation(obs), "")
	}
	return textResult(strings.Join(lines, "\n"))
}

// ProvideExtendedInfo provides extended help for the observation search tool
func (t *SearchObservationsTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Research-grade bird observations in a named place",
				Arguments: map[string]any{
					"place_name":    "New Zealand",
					"iconic_taxa":   "Aves",
					"quality_grade": "research",
				},
				ExpectedResult: "A result-count line followed by one formatted block per observation",
			},
			{
				Description: "Observations within 5 km of a coordinate",
				Arguments: map[string]any{
					"lat":    -33.87,
					"lng":    151.21,
					"radius": 5,
				},
				ExpectedResult: "Observations near Sydney with observer, date, location and photo links",
			},
			{
				Description: "Observations of a species over a date range",
				Arguments: map[string]any{
					"taxon_name": "monarch butterfly",
					"d1":         "2024-09-01",
					"d2":         "2024-11-30",
				},
				ExpectedResult: "Monarch observations recorded during the autumn migration window",
			},
		},
		CommonPatterns: []string{
			"Resolve coarse regions with place_name; use lat/lng/radius for point searches",
			"Pass taxon_id or place_id directly when known to skip the name-resolution request",
			"Combine iconic_taxa with quality_grade to keep results to well-identified groups",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "A 'Could not find a place matching ...' message comes back",
				Solution: "Try the English or official name, search_places to find the ID, or switch to lat/lng",
			},
			{
				Problem:  "A 'Rate limited by iNaturalist' message comes back",
				Solution: "Wait a moment and retry; the server already spaces calls to stay within the upstream quota",
			},
		},
		ParameterDetails: map[string]string{
			"per_page":    "Values above 200 are clamped to the API maximum of 200",
			"iconic_taxa": "Coarse group filter, e.g. Aves (birds), Insecta (insects), Plantae (plants)",
		},
		WhenToUse:    "When you need actual observation records: who saw what, where and when",
		WhenNotToUse: "When you only need species totals for an area; get_species_counts is one call and far more compact",
	}
}

// Definition returns the get_species_counts tool definition
func (t *SpeciesCountsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_species_counts",
		mcp.WithDescription("Get species observed at a location, ranked by observation count. Great for answering \"what wildlife will I see here?\""),
		mcp.WithNumber("lat", mcp.Description("Latitude for location-based search")),
		mcp.WithNumber("lng", mcp.Description("Longitude for location-based search")),
		mcp.WithNumber("radius", mcp.Description("Search radius in km (use with lat/lng, default 10)")),
		mcp.WithString("place_name", mcp.Description("Place name (e.g. \"Kruger National Park\")")),
		mcp.WithNumber("place_id", mcp.Description("iNaturalist place ID")),
		mcp.WithString("taxon_name", mcp.Description("Filter to a taxon group by name (e.g. \"Birds\")")),
		mcp.WithNumber("taxon_id", mcp.Description("Filter to a taxon group by ID")),
		mcp.WithString("d1", mcp.Description("Start date (YYYY-MM-DD)")),
		mcp.WithString("d2", mcp.Description("End date (YYYY-MM-DD)")),
		mcp.WithString("quality_grade",
			mcp.Description("Filter by observation quality"),
			mcp.Enum("research", "needs_id", "casual"),
		),
		mcp.WithString("iconic_taxa", mcp.Description("Filter by group: Aves, Mammalia, Reptilia, Amphibia, Insecta, Plantae, Fungi, etc.")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(20), mcp.Description("Number of species to return (default 20, max 200)")),
	)
}

// Execute runs the species-counts listing
func (t *SpeciesCountsTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing get_species_counts")

	perPage := clampPageSize(intArg(args, "per_page", 20), maxObservationPageSize)

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	applyLocationFilter(args, params)
	if msg := resolveNameFilters(ctx, c, args, params,
		"Could not find a place matching '%s'.",
		"Could not find a taxon matching '%s'.",
	); msg != "" {
		return textResult(msg)
	}
	applyDateAndGradeFilters(args, params)

	var result speciesCountsPage
	if err := c.get(ctx, "/observations/species_counts", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult("No species found matching your criteria.")
	}

	lines := []string{fmt.Sprintf("Found %d species (showing top %d):\n", result.TotalResults, len(result.Results))}
	for i, item := range result.Results {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatSpeciesCount(item)))
	}
	return textResult(strings.Join(lines, "\n"))
}
