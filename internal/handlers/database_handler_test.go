package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treadlab/fitment/internal/models"
	"github.com/treadlab/fitment/internal/store"
)

func TestSnapshot_ReturnsWholeDocument(t *testing.T) {
	env := setupTestRouter(t)
	env.repo.AddWheel(models.NewWheelSpec("Sport17"))
	env.repo.AddTireCombination("Sport17", models.NewTireSpec(225, 45, 17))

	w := env.do(t, http.MethodGet, "/api/v1/database/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc store.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Contains(t, doc.Wheels, "Sport17")
	require.Len(t, doc.TireCombinations["Sport17"], 1)
	assert.Equal(t, "225/45R17", doc.TireCombinations["Sport17"][0].SizeString())
}

func TestExport_WritesFileAndReturnsPath(t *testing.T) {
	env := setupTestRouter(t)
	env.repo.AddWheel(models.NewWheelSpec("Sport17"))

	w := env.do(t, http.MethodPost, "/api/v1/database/export", gin.H{
		"filename": "backup.json",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "exported", resp["status"])

	data, err := os.ReadFile(resp["path"])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sport17")
}

func TestExport_MissingFilename(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodPost, "/api/v1/database/export", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSave_PersistsDatabase(t *testing.T) {
	env := setupTestRouter(t)
	env.repo.AddWheel(models.NewWheelSpec("Sport17"))

	w := env.do(t, http.MethodPost, "/api/v1/database/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "saved", resp["status"])
}

func TestSheet_ReturnsPDF(t *testing.T) {
	env := setupTestRouter(t)
	env.repo.AddWheel(models.NewWheelSpec("Sport17"))
	env.repo.AddTireCombination("Sport17", models.NewTireSpec(225, 45, 17))

	w := env.do(t, http.MethodGet, "/api/v1/wheels/Sport17/sheet.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Sport17_fitment.pdf")
	assert.True(t, len(w.Body.Bytes()) > 4)
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestSheet_UnknownWheel(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/v1/wheels/Ghost/sheet.pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
