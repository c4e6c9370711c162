package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treadlab/fitment/internal/models"
)

func TestBuildProducesPDF(t *testing.T) {
	spec := models.NewWheelSpec("Sport17")
	tires := []models.TireSpec{
		models.NewTireSpec(225, 45, 17),
		models.NewTireSpec(235, 40, 18),
	}

	pdf, err := Build(spec, tires)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "output must be a PDF document")
	assert.Greater(t, len(pdf), 1000)
}

func TestBuildWithoutTires(t *testing.T) {
	pdf, err := Build(models.NewWheelSpec("Bare"), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
