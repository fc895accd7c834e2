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

// SearchTaxaTool finds taxa by common or scientific name
type SearchTaxaTool struct {
	toolBase
}

// GetTaxonTool fetches detailed information about one taxon by ID
type GetTaxonTool struct {
	toolBase
}

// SimilarSpeciesTool lists species commonly confused with a given taxon
type SimilarSpeciesTool struct {
	toolBase
}

func init() {
	registry.Register(&SearchTaxaTool{})
	registry.Register(&GetTaxonTool{})
	registry.Register(&SimilarSpeciesTool{})
}

// Definition returns the search_taxa tool definition
func (t *SearchTaxaTool) Definition() mcp.Tool {
	return mcp.NewTool("search_taxa",
		mcp.WithDescription("Search for species or taxa by common or scientific name."),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("Search query (common or scientific name, e.g. \"platypus\", \"Ornithorhynchus\")"),
		),
		mcp.WithBoolean("is_active", mcp.Description("Only show currently accepted taxa (default: all)")),
		mcp.WithString("rank", mcp.Description("Filter by taxonomic rank (species, genus, family, order, class, phylum, kingdom)")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(10), mcp.Description("Number of results (default 10, max 30)")),
	)
}

// Execute runs the taxon autocomplete search
func (t *SearchTaxaTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing search_taxa")

	query := stringArg(args, "q")
	if query == "" {
		return nil, fmt.Errorf("missing required parameter: q")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(clampPageSize(intArg(args, "per_page", 10), maxTaxaPageSize)))
	if isActive, ok := boolArg(args, "is_active"); ok {
		params.Set("is_active", strconv.FormatBool(isActive))
	}
	if rank := stringArg(args, "rank"); rank != "" {
		params.Set("rank", rank)
	}

	var result taxaPage
	if err := c.get(ctx, "/taxa/autocomplete", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult(fmt.Sprintf("No taxa found matching '%s'.", query))
	}

	lines := []string{fmt.Sprintf("Found %d taxa matching '%s':\n", len(result.Results), query)}
	for _, taxon := range result.Results {
		lines = append(lines, formatTaxon(taxon, false))
	}
	return textResult(strings.Join(lines, "\n"))
}

// Definition returns the get_taxon tool definition
func (t *GetTaxonTool) Definition() mcp.Tool {
	return mcp.NewTool("get_taxon",
		mcp.WithDescription("Get detailed information about a specific taxon (species, genus, etc.) by ID."),
		mcp.WithNumber("taxon_id",
			mcp.Required(),
			mcp.Description("The iNaturalist taxon ID"),
		),
	)
}

// Execute fetches one taxon and renders it in detailed mode
func (t *GetTaxonTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing get_taxon")

	if _, ok := floatArg(args, "taxon_id"); !ok {
		return nil, fmt.Errorf("missing required parameter: taxon_id")
	}
	taxonID := intArg(args, "taxon_id", 0)

	var result taxaPage
	if err := c.get(ctx, fmt.Sprintf("/taxa/%d", taxonID), nil, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult(fmt.Sprintf("No taxon found with ID %d.", taxonID))
	}

	return textResult(formatTaxon(result.Results[0], true))
}

// Definition returns the get_similar_species tool definition
func (t *SimilarSpeciesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_similar_species",
		mcp.WithDescription("Get species commonly confused with a given taxon. Useful for wildlife identification."),
		mcp.WithNumber("taxon_id",
			mcp.Required(),
			mcp.Description("The iNaturalist taxon ID to find similar species for"),
		),
		mcp.WithNumber("place_id", mcp.Description("Optional place ID to get regionally relevant results")),
	)
}

// Execute runs the similar-species lookup
func (t *SimilarSpeciesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	c := t.client(logger)
	logger.Debug("Executing get_similar_species")

	if _, ok := floatArg(args, "taxon_id"); !ok {
		return nil, fmt.Errorf("missing required parameter: taxon_id")
	}
	taxonID := intArg(args, "taxon_id", 0)

	params := url.Values{}
	params.Set("taxon_id", strconv.Itoa(taxonID))
	if placeID := intArg(args, "place_id", 0); placeID != 0 {
		params.Set("place_id", strconv.Itoa(placeID))
	}

	var result speciesCountsPage
	if err := c.get(ctx, "/identifications/similar_species", params, &result); err != nil {
		return textResult(err.Error())
	}
	if len(result.Results) == 0 {
		return textResult(fmt.Sprintf("No similar species data found for taxon %d.", taxonID))
	}

	lines := []string{fmt.Sprintf("Species commonly confused with taxon %d (%d results):\n", taxonID, len(result.Results))}
	for i, item := range result.Results {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatSpeciesCount(item)))
	}
	return textResult(strings.Join(lines, "\n"))
}
