package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/treadlab/fitment/internal/errors"
	"github.com/treadlab/fitment/internal/importer"
	"github.com/treadlab/fitment/internal/models"
	"github.com/treadlab/fitment/internal/services"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImportHandler handles wheel model import requests.
type ImportHandler struct {
	service services.FitmentService
}

// NewImportHandler creates a new ImportHandler instance.
func NewImportHandler(service services.FitmentService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportObject represents one scene object's measured bounding box as
// reported by the client's model loader.
type ImportObject struct {
	Name string  `json:"name" binding:"required,min=1"`
	X    float64 `json:"x" binding:"gte=0"`
	Y    float64 `json:"y" binding:"gte=0"`
	Z    float64 `json:"z" binding:"gte=0"`
}

// ImportRequest represents the body for the wheel import endpoint.
type ImportRequest struct {
	SourcePath string         `json:"source_path" binding:"required,min=1"`
	Objects    []ImportObject `json:"objects" binding:"required,min=1,dive"`
	Diameter   *float64       `json:"diameter" binding:"omitempty,gt=0"`
	Width      *float64       `json:"width" binding:"omitempty,gt=0"`
}

// ImportResponse represents the normalization outcome.
type ImportResponse struct {
	Wheel       string         `json:"wheel"`
	Object      string         `json:"object"`
	ScaleFactor float64        `json:"scale_factor"`
	Scaled      bool           `json:"scaled"`
	Metadata    map[string]any `json:"metadata"`
}

// Import handles POST /api/v1/wheels/:name/import.
// It picks the primary object from the reported scene, rescales it to the
// wheel's rim diameter, and registers the wheel with the source model path.
func (h *ImportHandler) Import(c *gin.Context) {
	name := c.Param("name")

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	spec := h.specForImport(c, name, req)

	objects := make([]importer.Object, 0, len(req.Objects))
	for _, obj := range req.Objects {
		objects = append(objects, importer.Object{
			Name: obj.Name,
			BBox: r3.Vec{X: obj.X, Y: obj.Y, Z: obj.Z},
		})
	}

	res, err := h.service.ImportWheel(c.Request.Context(), objects, spec, req.SourcePath)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidName):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, importer.ErrNoObjects):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to import wheel", err)
		}
		return
	}

	c.JSON(http.StatusCreated, ImportResponse{
		Wheel:       spec.Name,
		Object:      res.Object.Name,
		ScaleFactor: res.ScaleFactor,
		Scaled:      res.Scaled,
		Metadata:    res.Metadata,
	})
}

// specForImport starts from the existing wheel when one is registered under
// the name, so repeated imports refine rather than reset it, and falls back
// to factory defaults otherwise. The request may override diameter and
// width for the incoming model.
func (h *ImportHandler) specForImport(c *gin.Context, name string, req ImportRequest) models.WheelSpec {
	spec := models.NewWheelSpec(name)
	if existing, err := h.service.Wheel(c.Request.Context(), name); err == nil {
		spec = *existing
	}
	if req.Diameter != nil {
		spec.Diameter = *req.Diameter
	}
	if req.Width != nil {
		spec.Width = *req.Width
	}
	return spec
}
