package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/anime-filter/internal/imaging"
	"github.com/ironsheep/anime-filter/internal/preset"
	"github.com/ironsheep/anime-filter/internal/preview"
	"github.com/ironsheep/anime-filter/internal/stylize"
)

// errInvalidArgs marks argument problems, reported as -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_stylize").
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
// Bad arguments and invalid style parameters return -32602; any other tool
// failure returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		if errors.Is(err, errInvalidArgs) || errors.Is(err, stylize.ErrInvalidParameter) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool called", zap.String("tool", params.Name), zap.Duration("duration", time.Since(start)))

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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "presets_list":
		return s.handlePresetsList()
	case "image_stylize":
		return s.handleImageStylize(args)
	case "preview_submit":
		return s.handlePreviewSubmit(args)
	case "preview_latest":
		return s.handlePreviewLatest()
	case "image_export":
		return s.handleImageExport(args)
	case "image_palette":
		return s.handleImagePalette(args)
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, rejecting unknown fields.
// Missing arguments decode as an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// styleArgs are the arguments shared by every rendering tool. Explicit values
// override the named preset.
type styleArgs struct {
	Path           string   `json:"path"`
	Preset         string   `json:"preset"`
	Saturation     *float64 `json:"saturation"`
	Levels         *int     `json:"levels"`
	SmoothStrength *float64 `json:"smooth_strength"`
	EdgeStrength   *float64 `json:"edge_strength"`
}

// params resolves the preset (default "default") and applies overrides.
func (s *Server) params(a styleArgs) (string, stylize.Params, error) {
	name := a.Preset
	if name == "" {
		name = preset.Default
	}
	p, ok := s.presets.Lookup(name)
	if !ok {
		return "", stylize.Params{}, fmt.Errorf("%w: unknown preset %q", errInvalidArgs, name)
	}
	if a.Saturation != nil {
		p.SaturationFactor = *a.Saturation
	}
	if a.Levels != nil {
		p.Levels = *a.Levels
	}
	if a.SmoothStrength != nil {
		p.SmoothingSpatialExtent = *a.SmoothStrength
	}
	if a.EdgeStrength != nil {
		p.EdgePreservationStrength = *a.EdgeStrength
	}
	if err := p.Validate(); err != nil {
		return "", stylize.Params{}, err
	}
	return name, p, nil
}

// sourcePath returns path, or the active image when path is empty.
func (s *Server) sourcePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" {
		return "", fmt.Errorf("%w: no path given and no image loaded", errInvalidArgs)
	}
	return s.active, nil
}

// raster loads a source through the cache, downscales it and converts it.
func (s *Server) raster(path string, maxDim int) (*stylize.RasterImage, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.ToRaster(imaging.Downscale(img, maxDim))
}

// render resolves arguments and runs the pipeline synchronously.
func (s *Server) render(a styleArgs, maxDim int) (*renderResult, error) {
	name, p, err := s.params(a)
	if err != nil {
		return nil, err
	}
	path, err := s.sourcePath(a.Path)
	if err != nil {
		return nil, err
	}
	src, err := s.raster(path, maxDim)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := stylize.Stylize(src, p)
	if err != nil {
		return nil, err
	}
	return &renderResult{
		Source:   path,
		Preset:   name,
		Params:   p,
		image:    out,
		Duration: time.Since(start),
	}, nil
}

type renderResult struct {
	Source   string         `json:"source"`
	Preset   string         `json:"preset"`
	Params   stylize.Params `json:"params"`
	Duration time.Duration  `json:"-"`
	image    *stylize.RasterImage
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

type imageLoadResult struct {
	*imaging.ImageInfo
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.active = a.Path
	s.mu.Unlock()
	return &imageLoadResult{ImageInfo: info, Path: a.Path, Active: true}, nil
}

func (s *Server) handlePresetsList() (interface{}, error) {
	return map[string]interface{}{
		"presets": s.presets.Presets(),
	}, nil
}

type imageStylizeArgs struct {
	styleArgs
	Format       string `json:"format"`
	Quality      int    `json:"quality"`
	MaxDimension int    `json:"max_dimension"`
}

type imageResult struct {
	*renderResult
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	DurationMS  float64 `json:"duration_ms"`
	MimeType    string  `json:"mime_type"`
	ImageBase64 string  `json:"image_base64"`
}

func (s *Server) handleImageStylize(args json.RawMessage) (interface{}, error) {
	var a imageStylizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	format, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	res, err := s.render(a.styleArgs, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodeBase64(imaging.FromRaster(res.image), format, a.Quality)
	if err != nil {
		return nil, err
	}
	return &imageResult{
		renderResult: res,
		Width:        res.image.Width,
		Height:       res.image.Height,
		DurationMS:   durationMS(res.Duration),
		MimeType:     format.MimeType(),
		ImageBase64:  encoded,
	}, nil
}

// === Preview Handlers ===

type previewSubmitResult struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Preset string         `json:"preset"`
	Params stylize.Params `json:"params"`
}

func (s *Server) handlePreviewSubmit(args json.RawMessage) (interface{}, error) {
	var a styleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	name, p, err := s.params(a)
	if err != nil {
		return nil, err
	}
	path, err := s.sourcePath(a.Path)
	if err != nil {
		return nil, err
	}
	src, err := s.raster(path, s.opts.PreviewMaxDimension)
	if err != nil {
		return nil, err
	}
	id, err := s.previewer.Submit(src, p, path)
	if err != nil {
		return nil, err
	}
	return &previewSubmitResult{ID: id, Source: path, Preset: name, Params: p}, nil
}

type previewLatestResult struct {
	Available   bool            `json:"available"`
	ID          string          `json:"id,omitempty"`
	Source      string          `json:"source,omitempty"`
	Params      *stylize.Params `json:"params,omitempty"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	DurationMS  float64         `json:"duration_ms,omitempty"`
	Error       string          `json:"error,omitempty"`
	MimeType    string          `json:"mime_type,omitempty"`
	ImageBase64 string          `json:"image_base64,omitempty"`
	Stats       preview.Stats   `json:"stats"`
}

func (s *Server) handlePreviewLatest() (interface{}, error) {
	out := &previewLatestResult{Stats: s.previewer.Stats()}
	res, ok := s.previewer.Latest()
	if !ok {
		return out, nil
	}
	out.Available = true
	out.ID = res.ID
	out.Source = res.Label
	out.Params = &res.Params
	out.DurationMS = durationMS(res.Duration)
	if res.Err != nil {
		out.Error = res.Err.Error()
		return out, nil
	}
	encoded, err := imaging.EncodeBase64(imaging.FromRaster(res.Image), imaging.JPEG, s.opts.PreviewQuality)
	if err != nil {
		return nil, err
	}
	out.Width, out.Height = res.Image.Width, res.Image.Height
	out.MimeType = imaging.JPEG.MimeType()
	out.ImageBase64 = encoded
	return out, nil
}

// === Export Handlers ===

type imageExportArgs struct {
	styleArgs
	Output  string `json:"output"`
	Quality int    `json:"quality"`
}

type imageExportResult struct {
	*renderResult
	Output     string  `json:"output"`
	Format     string  `json:"format"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	DurationMS float64 `json:"duration_ms"`
}

func (s *Server) handleImageExport(args json.RawMessage) (interface{}, error) {
	var a imageExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, fmt.Errorf("%w: output is required", errInvalidArgs)
	}
	res, err := s.render(a.styleArgs, 0)
	if err != nil {
		return nil, err
	}
	path, format := imaging.ExportPath(a.Output)
	if err := imaging.Save(path, imaging.FromRaster(res.image), format, a.Quality); err != nil {
		return nil, err
	}
	s.logger.Info("exported", zap.String("output", path), zap.String("preset", res.Preset))
	return &imageExportResult{
		renderResult: res,
		Output:       path,
		Format:       string(format),
		Width:        res.image.Width,
		Height:       res.image.Height,
		DurationMS:   durationMS(res.Duration),
	}, nil
}

type imagePaletteArgs struct {
	styleArgs
	Count int `json:"count"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 8
	}
	if a.Count < 1 || a.Count > imaging.MaxPaletteColors {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", errInvalidArgs, imaging.MaxPaletteColors)
	}
	res, err := s.render(a.styleArgs, s.opts.PreviewMaxDimension)
	if err != nil {
		return nil, err
	}
	colors, err := imaging.Palette(imaging.FromRaster(res.image), a.Count)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"source": res.Source,
		"preset": res.Preset,
		"params": res.Params,
		"colors": colors,
	}, nil
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
