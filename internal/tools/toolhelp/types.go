package toolhelp

// helpResponse is the JSON payload returned by the get_tool_help tool
type helpResponse struct {
	ToolName        string         `json:"tool_name"`
	BasicInfo       map[string]any `json:"basic_info"`
	ExtendedInfo    *extendedData  `json:"extended_info,omitempty"`
	HasExtendedInfo bool           `json:"has_extended_info"`
	Message         string         `json:"message,omitempty"`
}

// extendedData mirrors tools.ExtendedHelp in response form
type extendedData struct {
	Examples         []exampleData         `json:"examples,omitempty"`
	CommonPatterns   []string              `json:"common_patterns,omitempty"`
	Troubleshooting  []troubleshootingData `json:"troubleshooting,omitempty"`
	ParameterDetails map[string]string     `json:"parameter_details,omitempty"`
	WhenToUse        string                `json:"when_to_use,omitempty"`
	WhenNotToUse     string                `json:"when_not_to_use,omitempty"`
}

type exampleData struct {
	Description    string         `json:"description"`
	Arguments      map[string]any `json:"arguments"`
	ExpectedResult string         `json:"expected_result,omitempty"`
}

type troubleshootingData struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}
