package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
	"github.com/ironsheep/alveoli-tools/internal/config"
	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "alveoli_count_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warning(component, "tool failed", map[string]interface{}{
			"tool":  params.Name,
			"error": err.Error(),
		})
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "alveoli_count_image":
		return s.handleCountImage(ctx, args)
	case "alveoli_count_region":
		return s.handleCountRegion(args)
	case "alveoli_window_overlay":
		return s.handleWindowOverlay(args)
	case "alveoli_compare":
		return s.handleCompare(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// windowArgs are the optional window overrides shared by several tools.
type windowArgs struct {
	Size      int   `json:"size"`
	Positions []int `json:"positions"`
}

// resolveWindows returns the server's windows with the call's overrides applied.
func (s *Server) resolveWindows(a windowArgs) ([]imaging.Window, error) {
	if a.Size < 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", a.Size)
	}

	size := a.Size
	if size == 0 {
		size = defaultWindowSize
		if len(s.windows) > 0 {
			size = s.windows[0].Size
		}
	}

	if len(a.Positions) > 0 {
		anchors, err := config.ParsePositions(a.Positions)
		if err != nil {
			return nil, err
		}
		return imaging.WindowsAt(anchors, size), nil
	}
	if len(s.windows) == 0 {
		return nil, config.ErrNoWindows
	}

	windows := make([]imaging.Window, len(s.windows))
	for i, w := range s.windows {
		windows[i] = w
		if a.Size > 0 {
			windows[i].Size = a.Size
		}
	}
	return windows, nil
}

// === Counting Handlers ===

type countImageArgs struct {
	Path string `json:"path"`
	windowArgs
}

func (s *Server) handleCountImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a countImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	windows, err := s.resolveWindows(a.windowArgs)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	counter := analysis.NewCounter(s.backend, windows, analysis.WithLogger(s.log))
	result, err := counter.CountLoaded(ctx, analysis.SampleName(a.Path), img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Path, err)
	}
	result.Path = a.Path
	return result, nil
}

type countRegionArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Size int    `json:"size"`
}

// RegionCount is the alveoli_count_region result.
type RegionCount struct {
	Window       imaging.Window `json:"window"`
	Clipped      bool           `json:"clipped"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Count        int            `json:"count"`
	Rejected     int            `json:"rejected"`
	TissuePixels int            `json:"tissue_pixels"`
	Areas        []float64      `json:"areas"`
}

func (s *Server) handleCountRegion(args json.RawMessage) (interface{}, error) {
	var a countRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	w := imaging.Window{X: a.X, Y: a.Y, Size: a.Size}
	crop, err := imaging.CropWindow(img, w)
	if err != nil {
		return nil, err
	}
	region, err := s.backend.CountRegion(crop.Image)
	if err != nil {
		return nil, err
	}

	areas := make([]float64, len(region.Contours))
	for i, c := range region.Contours {
		areas[i] = c.Area
	}
	return &RegionCount{
		Window:       w,
		Clipped:      crop.Clipped,
		Width:        crop.Rect.Dx(),
		Height:       crop.Rect.Dy(),
		Count:        region.Count,
		Rejected:     region.Rejected,
		TissuePixels: region.TissuePixels,
		Areas:        areas,
	}, nil
}

// === Overlay Handler ===

type windowOverlayArgs struct {
	Path  string `json:"path"`
	Color string `json:"color"`
	windowArgs
}

func (s *Server) handleWindowOverlay(args json.RawMessage) (interface{}, error) {
	var a windowOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FFFF00"
	}
	windows, err := s.resolveWindows(a.windowArgs)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeWindowOverlay(img, windows, a.Color)
}

// === Comparison Handler ===

type compareArgs struct {
	ImageDir string `json:"image_dir"`
	Group1   string `json:"group1"`
	Group2   string `json:"group2"`
}

// Comparison is the alveoli_compare result.
type Comparison struct {
	Cohorts []*analysis.Cohort    `json:"cohorts"`
	TTest   *analysis.TTestResult `json:"t_test"`
}

func (s *Server) handleCompare(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Group1 == "" || a.Group2 == "" {
		return nil, fmt.Errorf("group1 and group2 are required")
	}
	if a.Group1 == a.Group2 {
		return nil, fmt.Errorf("group1 and group2 must differ, both are %q", a.Group1)
	}

	windows, err := s.resolveWindows(windowArgs{})
	if err != nil {
		return nil, err
	}

	counter := analysis.NewCounter(s.backend, windows, analysis.WithLogger(s.log))
	analyzer := analysis.NewAnalyzer(counter,
		analysis.WithWorkers(s.workers),
		analysis.WithAnalyzerLogger(s.log),
	)

	result := &Comparison{}
	for _, condition := range []string{a.Group1, a.Group2} {
		paths, err := analysis.DiscoverImages(a.ImageDir, condition)
		if err != nil {
			return nil, err
		}
		cohort, err := analyzer.AnalyzeCohort(ctx, condition, paths)
		if err != nil {
			return nil, err
		}
		result.Cohorts = append(result.Cohorts, cohort)
	}

	ttest, err := analysis.Compare(result.Cohorts[0].Counts(), result.Cohorts[1].Counts())
	if err != nil {
		return nil, err
	}
	result.TTest = ttest
	return result, nil
}
