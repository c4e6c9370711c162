package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/treadlab/fitment/internal/errors"
	"github.com/treadlab/fitment/internal/mesh"
	"github.com/treadlab/fitment/internal/middleware"
	"github.com/treadlab/fitment/internal/models"
	"github.com/treadlab/fitment/internal/services"
)

// GeometryHandler handles tire mesh generation requests.
type GeometryHandler struct {
	service services.FitmentService
}

// NewGeometryHandler creates a new GeometryHandler instance.
func NewGeometryHandler(service services.FitmentService) *GeometryHandler {
	return &GeometryHandler{
		service: service,
	}
}

// MeshRequest represents the body for the tire mesh endpoint. WheelDiameter
// defaults to the tire's rim diameter when omitted.
type MeshRequest struct {
	Width         float64  `json:"width" binding:"required,gt=0"`
	AspectRatio   float64  `json:"aspect_ratio" binding:"required,gt=0"`
	Diameter      float64  `json:"diameter" binding:"required,gt=0"`
	WheelDiameter *float64 `json:"wheel_diameter" binding:"omitempty,gt=0"`
}

// MeshResponse summarizes a generated mesh without the raw vertex stream.
type MeshResponse struct {
	Name     string        `json:"name"`
	Vertices int           `json:"vertices"`
	Faces    int           `json:"faces"`
	BoundsM  [2][3]float64 `json:"bounds_m"`
	Material MaterialData  `json:"material"`
}

// MaterialData represents the mesh material in the API response.
type MaterialData struct {
	Name      string     `json:"name"`
	BaseColor [4]float64 `json:"base_color"`
	Roughness float64    `json:"roughness"`
	Specular  float64    `json:"specular"`
}

// Mesh handles POST /api/v1/tires/mesh.
// With ?format=stl the generated surface is returned as an STL download;
// otherwise a JSON summary of the mesh is returned.
func (h *GeometryHandler) Mesh(c *gin.Context) {
	var req MeshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	tire := models.NewTireSpec(req.Width, req.AspectRatio, req.Diameter)
	wheelDiameter := tire.Diameter
	if req.WheelDiameter != nil {
		wheelDiameter = *req.WheelDiameter
	}

	m, err := h.service.GenerateTireMesh(c.Request.Context(), tire, wheelDiameter)
	if err != nil {
		if errors.Is(err, mesh.ErrDegenerateProfile) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to generate tire mesh", err)
		return
	}

	if c.Query("format") == "stl" {
		// Size strings contain a slash; keep the filename flat.
		filename := strings.ReplaceAll(m.Name, "/", "-") + ".stl"
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "model/stl")
		c.Status(http.StatusOK)
		if err := mesh.EncodeSTL(c.Writer, m); err != nil {
			// Headers are already out; all we can do is log and abort.
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Failed to stream STL", err, map[string]interface{}{
					"mesh": m.Name,
				})
			}
			c.Abort()
		}
		return
	}

	min, max := m.Bounds()
	c.JSON(http.StatusOK, MeshResponse{
		Name:     m.Name,
		Vertices: len(m.Vertices),
		Faces:    len(m.Faces),
		BoundsM: [2][3]float64{
			{min.X, min.Y, min.Z},
			{max.X, max.Y, max.Z},
		},
		Material: MaterialData{
			Name:      m.Material.Name,
			BaseColor: m.Material.BaseColor,
			Roughness: m.Material.Roughness,
			Specular:  m.Material.Specular,
		},
	})
}
