package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/export"
	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/projection"
)

// Handler serves the engine endpoints.
type Handler struct {
	defaults model.AppConfig
	detector *engine.Detector
}

// NewHandler creates a Handler.
func NewHandler(defaults model.AppConfig, detector *engine.Detector) *Handler {
	return &Handler{defaults: defaults, detector: detector}
}

type splitRequest struct {
	Facet       model.Facet     `json:"facet"`
	Line        model.SplitLine `json:"line"`
	FeetPerUnit float64         `json:"feet_per_unit"` // default 1
	Index       int             `json:"index"`         // palette index for the first child
}

type splitResponse struct {
	Facets [2]model.Facet `json:"facets"`
}

type detectRequest struct {
	Polygon  model.Polygon         `json:"polygon"`
	Features []model.LinearFeature `json:"features"`
}

type geoJSONRequest struct {
	Context projection.Context `json:"context"`
	Facets  []model.Facet      `json:"facets"`
}

type xlsxRequest struct {
	engine.MeasureRequest
	Facets []model.Facet `json:"facets"`
}

// errorStatus maps engine errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrDoesNotBisect), errors.Is(err, model.ErrDegeneratePolygon):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidMeasurement), errors.Is(err, model.ErrUnknownPitchLabel):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func failErr(c fiber.Ctx, err error) error {
	return fail(c, errorStatus(err), err.Error())
}

var (
	errEmptyBody   = errors.New("empty body")
	errInvalidJSON = errors.New("invalid json")
)

func decode(c fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// measureRequest fills pitch and waste from the configured defaults.
func (h *Handler) measureRequest(req engine.MeasureRequest) engine.MeasureRequest {
	if req.Pitch == "" {
		req.Pitch = h.defaults.DefaultPitch
	}
	if req.WastePercent == nil {
		w := h.defaults.DefaultWastePercent
		req.WastePercent = &w
	}
	if req.Zoom == 0 {
		req.Zoom = h.defaults.DefaultZoom
	}
	if req.Width == 0 {
		req.Width = h.defaults.DefaultFrameWidth
	}
	if req.Height == 0 {
		req.Height = h.defaults.DefaultFrameHeight
	}
	return req
}

// Pitches returns the pitch table. With ?nearest=<multiplier> it returns
// the closest table entry instead.
func (h *Handler) Pitches(c fiber.Ctx) error {
	q := c.Query("nearest")
	if q == "" {
		return c.JSON(model.PitchTable())
	}
	m, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "nearest must be a number")
	}
	label, err := model.NearestPitch(m)
	if err != nil {
		return failErr(c, err)
	}
	mult, err := model.MultiplierFor(label)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(fiber.Map{"pitch": label, "multiplier": mult})
}

// Measure runs the full measurement pipeline on a lng/lat outline.
func (h *Handler) Measure(c fiber.Ctx) error {
	var req engine.MeasureRequest
	if err := decode(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	m, err := engine.Measure(h.measureRequest(req))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(m)
}

// Split cuts one facet and returns its two children.
func (h *Handler) Split(c fiber.Ctx) error {
	var req splitRequest
	if err := decode(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if req.FeetPerUnit == 0 {
		req.FeetPerUnit = 1
	}
	children, err := engine.SplitFacet(req.Facet, req.Line, req.FeetPerUnit, req.Index)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(splitResponse{Facets: children})
}

// Detect classifies a planar outline.
func (h *Handler) Detect(c fiber.Ctx) error {
	var req detectRequest
	if err := decode(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(h.detector.Detect(req.Polygon, req.Features))
}

// ExportXLSX measures the outline and streams the takeoff workbook.
func (h *Handler) ExportXLSX(c fiber.Ctx) error {
	var req xlsxRequest
	if err := decode(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	m, err := engine.Measure(h.measureRequest(req.MeasureRequest))
	if err != nil {
		return failErr(c, err)
	}
	var buf bytes.Buffer
	if err := export.WriteTakeoffXLSX(&buf, m, req.Facets); err != nil {
		return failErr(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="takeoff.xlsx"`)
	return c.Send(buf.Bytes())
}

// ExportGeoJSON projects planar facets back to lng/lat.
func (h *Handler) ExportGeoJSON(c fiber.Ctx) error {
	var req geoJSONRequest
	if err := decode(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx := req.Context
	if ctx.Zoom <= 0 || ctx.Width <= 0 || ctx.Height <= 0 {
		return fail(c, http.StatusBadRequest, "context needs positive zoom and frame size")
	}
	data, err := export.FacetsGeoJSON(req.Facets, ctx).MarshalJSON()
	if err != nil {
		return failErr(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}
