package toolhelp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/wildsight/mcp-inaturalist/internal/registry"
	"github.com/wildsight/mcp-inaturalist/internal/tools"
)

// ToolHelpTool exposes the extended usage information other tools carry
type ToolHelpTool struct{}

func init() {
	registry.Register(&ToolHelpTool{})
}

// Definition returns the get_tool_help tool definition. The tool_name enum is
// built from the tools that actually provide extended help.
func (t *ToolHelpTool) Definition() mcp.Tool {
	toolsWithHelp := registry.GetToolNamesWithExtendedHelp()

	description := "Get detailed usage examples and troubleshooting for this server's tools when results are unexpected."
	if len(toolsWithHelp) == 0 {
		description = "No tools currently provide extended help information."
	}

	return mcp.NewTool("get_tool_help",
		mcp.WithDescription(description),
		mcp.WithString("tool_name",
			mcp.Required(),
			mcp.Description("Name of the tool to get help for"),
			mcp.Enum(toolsWithHelp...),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute looks up the named tool and renders its extended help as JSON
func (t *ToolHelpTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing get_tool_help")

	toolName, ok := args["tool_name"].(string)
	if !ok || toolName == "" {
		return nil, fmt.Errorf("missing required parameter: tool_name")
	}

	tool, exists := registry.GetTool(toolName)
	if !exists {
		return nil, fmt.Errorf("tool '%s' not found or disabled. Tools with extended help: %s",
			toolName, strings.Join(registry.GetToolNamesWithExtendedHelp(), ", "))
	}

	provider, ok := tool.(tools.ExtendedHelpProvider)
	if !ok {
		return nil, fmt.Errorf("tool '%s' does not provide extended help. Tools with extended help: %s",
			toolName, strings.Join(registry.GetToolNamesWithExtendedHelp(), ", "))
	}

	response := &helpResponse{
		ToolName:        toolName,
		BasicInfo:       basicInfo(tool),
		HasExtendedInfo: true,
	}
	if info := provider.ProvideExtendedInfo(); info != nil {
		response.ExtendedInfo = convertExtendedHelp(info)
	} else {
		response.HasExtendedInfo = false
		response.Message = fmt.Sprintf("Tool '%s' returned no extended information", toolName)
	}

	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

func basicInfo(tool tools.Tool) map[string]any {
	definition := tool.Definition()
	info := map[string]any{
		"name":        definition.Name,
		"description": definition.Description,
	}
	if definition.InputSchema.Type != "" {
		info["input_schema"] = definition.InputSchema
	}
	return info
}

func convertExtendedHelp(info *tools.ExtendedHelp) *extendedData {
	result := &extendedData{
		CommonPatterns:   info.CommonPatterns,
		ParameterDetails: info.ParameterDetails,
		WhenToUse:        info.WhenToUse,
		WhenNotToUse:     info.WhenNotToUse,
	}
	for _, tip := range info.Troubleshooting {
		result.Troubleshooting = append(result.Troubleshooting, troubleshootingData{
			Problem:  tip.Problem,
			Solution: tip.Solution,
		})
	}
	for _, example := range info.Examples {
		result.Examples = append(result.Examples, exampleData{
			Description:    example.Description,
			Arguments:      example.Arguments,
			ExpectedResult: example.ExpectedResult,
		})
	}
	return result
}
