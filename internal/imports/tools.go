package imports

import (
	// Tool packages register themselves with the registry on import
	_ "github.com/wildsight/mcp-inaturalist/internal/tools/inaturalist"
	_ "github.com/wildsight/mcp-inaturalist/internal/tools/toolhelp"
)
