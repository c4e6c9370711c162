package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/treadlab/fitment/internal/errors"
	"github.com/treadlab/fitment/internal/services"
)

// DatabaseHandler handles persistence and export requests for the wheel
// database as a whole.
type DatabaseHandler struct {
	service services.FitmentService
}

// NewDatabaseHandler creates a new DatabaseHandler instance.
func NewDatabaseHandler(service services.FitmentService) *DatabaseHandler {
	return &DatabaseHandler{
		service: service,
	}
}

// ExportRequest represents the body for the export endpoint.
type ExportRequest struct {
	Filename string `json:"filename" binding:"required,min=1"`
}

// Save handles POST /api/v1/database/save.
// It persists the database to its configured file.
func (h *DatabaseHandler) Save(c *gin.Context) {
	if err := h.service.SaveDatabase(c.Request.Context()); err != nil {
		apierrors.InternalServerError(c, "Failed to save wheel database", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// Export handles POST /api/v1/database/export.
// Path components in the requested filename are stripped; exports always
// land in the configured export directory.
func (h *DatabaseHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	path, err := h.service.ExportDatabase(c.Request.Context(), req.Filename)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to export wheel database", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "exported", "path": path})
}

// Snapshot handles GET /api/v1/database/snapshot.
// It returns the whole database document as a read-only copy.
func (h *DatabaseHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot(c.Request.Context()))
}

// Sheet handles GET /api/v1/wheels/:name/sheet.pdf.
func (h *DatabaseHandler) Sheet(c *gin.Context) {
	name := c.Param("name")

	pdf, err := h.service.FitmentSheet(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrWheelNotFound) {
			apierrors.NotFound(c, "No wheel named "+name)
			return
		}
		apierrors.InternalServerError(c, "Failed to build fitment sheet", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`_fitment.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
