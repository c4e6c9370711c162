package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/treadlab/fitment/internal/errors"
	"github.com/treadlab/fitment/internal/middleware"
	"github.com/treadlab/fitment/internal/models"
	"github.com/treadlab/fitment/internal/services"
)

// WheelHandler handles wheel-related HTTP requests.
type WheelHandler struct {
	service services.FitmentService
}

// NewWheelHandler creates a new WheelHandler instance.
func NewWheelHandler(service services.FitmentService) *WheelHandler {
	return &WheelHandler{
		service: service,
	}
}

// UpsertWheelRequest represents the body for creating or replacing a wheel.
// Omitted fields fall back to the factory defaults, so pointer fields
// distinguish "absent" from zero.
type UpsertWheelRequest struct {
	Name         string   `json:"name" binding:"required,min=1"`
	Diameter     *float64 `json:"diameter" binding:"omitempty,gt=0"`
	Width        *float64 `json:"width" binding:"omitempty,gt=0"`
	Offset       *float64 `json:"offset"`
	BoltPattern  *string  `json:"bolt_pattern"`
	CenterBore   *float64 `json:"center_bore" binding:"omitempty,gt=0"`
	LoadRating   *float64 `json:"load_rating" binding:"omitempty,gt=0"`
	ModelPath    *string  `json:"model_path"`
	PreviewImage *string  `json:"preview_image"`
}

// TireRequest represents the body for registering a tire combination.
type TireRequest struct {
	Width       float64 `json:"width" binding:"required,gt=0"`
	AspectRatio float64 `json:"aspect_ratio" binding:"required,gt=0"`
	Diameter    float64 `json:"diameter" binding:"required,gt=0"`
	LoadIndex   *int    `json:"load_index" binding:"omitempty,gt=0"`
	SpeedRating *string `json:"speed_rating"`
}

// TireResponse represents a stored tire combination with its derived
// geometry.
type TireResponse struct {
	Size              string  `json:"size"`
	Width             float64 `json:"width"`
	AspectRatio       float64 `json:"aspect_ratio"`
	Diameter          float64 `json:"diameter"`
	LoadIndex         int     `json:"load_index"`
	SpeedRating       string  `json:"speed_rating"`
	SidewallHeightMM  float64 `json:"sidewall_height_mm"`
	OverallDiameterMM float64 `json:"overall_diameter_mm"`
}

// WheelListResponse represents the wheel name listing.
type WheelListResponse struct {
	Wheels []string `json:"wheels"`
	Count  int      `json:"count"`
}

// TireListResponse represents a wheel's tire combination list.
type TireListResponse struct {
	Wheel string         `json:"wheel"`
	Tires []TireResponse `json:"tires"`
	Count int            `json:"count"`
}

// Create handles POST /api/v1/wheels.
// It inserts or overwrites a wheel; omitted fields take factory defaults.
func (h *WheelHandler) Create(c *gin.Context) {
	var req UpsertWheelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	h.upsert(c, req)
}

// Replace handles PUT /api/v1/wheels/:name.
// The path name is authoritative; a body name, if present, must match it.
func (h *WheelHandler) Replace(c *gin.Context) {
	name := c.Param("name")

	var req UpsertWheelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if req.Name != name {
		apierrors.BadRequest(c, "Body name does not match path name", map[string]interface{}{
			"path_name": name,
			"body_name": req.Name,
		})
		return
	}

	h.upsert(c, req)
}

func (h *WheelHandler) upsert(c *gin.Context, req UpsertWheelRequest) {
	spec := specFromRequest(req)

	if err := h.service.UpsertWheel(c.Request.Context(), spec); err != nil {
		if errors.Is(err, services.ErrInvalidName) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to store wheel", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wheel": spec})
}

// Get handles GET /api/v1/wheels/:name.
func (h *WheelHandler) Get(c *gin.Context) {
	name := c.Param("name")

	spec, err := h.service.Wheel(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrWheelNotFound) {
			apierrors.NotFound(c, "No wheel named "+name)
			return
		}
		apierrors.InternalServerError(c, "Failed to fetch wheel", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wheel": spec})
}

// List handles GET /api/v1/wheels.
func (h *WheelHandler) List(c *gin.Context) {
	names := h.service.WheelNames(c.Request.Context())

	c.JSON(http.StatusOK, WheelListResponse{
		Wheels: names,
		Count:  len(names),
	})
}

// Delete handles DELETE /api/v1/wheels/:name.
// Removing an unknown wheel is a no-op and still returns 204.
func (h *WheelHandler) Delete(c *gin.Context) {
	h.service.RemoveWheel(c.Request.Context(), c.Param("name"))
	c.Status(http.StatusNoContent)
}

// AddTire handles POST /api/v1/wheels/:name/tires.
func (h *WheelHandler) AddTire(c *gin.Context) {
	log := middleware.GetLogger(c)
	name := c.Param("name")

	var req TireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	tire := models.NewTireSpec(req.Width, req.AspectRatio, req.Diameter)
	if req.LoadIndex != nil {
		tire.LoadIndex = *req.LoadIndex
	}
	if req.SpeedRating != nil {
		tire.SpeedRating = *req.SpeedRating
	}

	stored, err := h.service.AddTireCombination(c.Request.Context(), name, tire)
	if err != nil {
		if errors.Is(err, services.ErrWheelNotFound) {
			apierrors.NotFound(c, "No wheel named "+name)
			return
		}
		apierrors.InternalServerError(c, "Failed to add tire combination", err)
		return
	}

	if log != nil {
		log.Info("Tire combination registered", map[string]interface{}{
			"wheel": name,
			"size":  stored.SizeString(),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"tire": tireToDTO(stored)})
}

// Tires handles GET /api/v1/wheels/:name/tires.
func (h *WheelHandler) Tires(c *gin.Context) {
	name := c.Param("name")

	tires, err := h.service.TireCombinations(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrWheelNotFound) {
			apierrors.NotFound(c, "No wheel named "+name)
			return
		}
		apierrors.InternalServerError(c, "Failed to fetch tire combinations", err)
		return
	}

	dtos := make([]TireResponse, 0, len(tires))
	for _, tire := range tires {
		dtos = append(dtos, tireToDTO(tire))
	}

	c.JSON(http.StatusOK, TireListResponse{
		Wheel: name,
		Tires: dtos,
		Count: len(dtos),
	})
}

// specFromRequest builds a defaulted WheelSpec and overlays the request's
// present fields.
func specFromRequest(req UpsertWheelRequest) models.WheelSpec {
	spec := models.NewWheelSpec(req.Name)
	if req.Diameter != nil {
		spec.Diameter = *req.Diameter
	}
	if req.Width != nil {
		spec.Width = *req.Width
	}
	if req.Offset != nil {
		spec.Offset = *req.Offset
	}
	if req.BoltPattern != nil {
		spec.BoltPattern = *req.BoltPattern
	}
	if req.CenterBore != nil {
		spec.CenterBore = *req.CenterBore
	}
	if req.LoadRating != nil {
		spec.LoadRating = *req.LoadRating
	}
	if req.ModelPath != nil {
		spec.ModelPath = *req.ModelPath
	}
	if req.PreviewImage != nil {
		spec.PreviewImage = *req.PreviewImage
	}
	return spec
}

// tireToDTO converts a TireSpec to its response shape, surfacing the derived
// geometry that json encoding of the model omits.
func tireToDTO(tire models.TireSpec) TireResponse {
	tire.Recompute()
	return TireResponse{
		Size:              tire.SizeString(),
		Width:             tire.Width,
		AspectRatio:       tire.AspectRatio,
		Diameter:          tire.Diameter,
		LoadIndex:         tire.LoadIndex,
		SpeedRating:       tire.SpeedRating,
		SidewallHeightMM:  tire.SidewallHeightMM,
		OverallDiameterMM: tire.OverallDiameterMM,
	}
}
