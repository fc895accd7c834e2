package toolhelp_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildsight/mcp-inaturalist/internal/registry"
	"github.com/wildsight/mcp-inaturalist/internal/tools/toolhelp"

	// Register the domain tools so their extended help is discoverable
	_ "github.com/wildsight/mcp-inaturalist/internal/tools/inaturalist"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func executeHelp(t *testing.T, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()
	tool := &toolhelp.ToolHelpTool{}
	return tool.Execute(context.Background(), testLogger(), &sync.Map{}, args)
}

func TestToolHelpIsRegistered(t *testing.T) {
	tool, ok := registry.GetTool("get_tool_help")
	require.True(t, ok)
	assert.Equal(t, "get_tool_help", tool.Definition().Name)
}

func TestToolHelpDefinitionEnumListsProviders(t *testing.T) {
	tool := &toolhelp.ToolHelpTool{}

	definition := tool.Definition()

	assert.Contains(t, definition.Description, "usage examples")
	assert.Contains(t, registry.GetToolNamesWithExtendedHelp(), "search_observations")
}

func TestToolHelpReturnsExtendedInfo(t *testing.T) {
	result, err := executeHelp(t, map[string]any{"tool_name": "search_observations"})

	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var response struct {
		ToolName        string `json:"tool_name"`
		HasExtendedInfo bool   `json:"has_extended_info"`
		ExtendedInfo    struct {
			Examples []struct {
				Description string `json:"description"`
			} `json:"examples"`
			Troubleshooting []struct {
				Problem string `json:"problem"`
			} `json:"troubleshooting"`
		} `json:"extended_info"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &response))
	assert.Equal(t, "search_observations", response.ToolName)
	assert.True(t, response.HasExtendedInfo)
	assert.NotEmpty(t, response.ExtendedInfo.Examples)
	assert.NotEmpty(t, response.ExtendedInfo.Troubleshooting)
}

func TestToolHelpUnknownTool(t *testing.T) {
	_, err := executeHelp(t, map[string]any{"tool_name": "never_registered"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestToolHelpToolWithoutExtendedHelp(t *testing.T) {
	_, err := executeHelp(t, map[string]any{"tool_name": "search_places"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not provide extended help")
}

func TestToolHelpRequiresToolName(t *testing.T) {
	_, err := executeHelp(t, map[string]any{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameter: tool_name")
}
