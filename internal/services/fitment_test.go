package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/treadlab/fitment/internal/importer"
	"github.com/treadlab/fitment/internal/logger"
	"github.com/treadlab/fitment/internal/mesh"
	"github.com/treadlab/fitment/internal/models"
	"github.com/treadlab/fitment/internal/store"
	"gonum.org/v1/gonum/spatial/r3"
)

// MockRepository is a mock implementation of store.Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) AddWheel(spec models.WheelSpec) {
	m.Called(spec)
}

func (m *MockRepository) GetWheel(name string) *models.WheelSpec {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil
	}
	spec, ok := args.Get(0).(*models.WheelSpec)
	if !ok {
		return nil
	}
	return spec
}

func (m *MockRepository) WheelNames() []string {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names
}

func (m *MockRepository) RemoveWheel(name string) {
	m.Called(name)
}

func (m *MockRepository) AddTireCombination(wheelName string, tire models.TireSpec) {
	m.Called(wheelName, tire)
}

func (m *MockRepository) TireCombinations(wheelName string) []models.TireSpec {
	args := m.Called(wheelName)
	tires, _ := args.Get(0).([]models.TireSpec)
	return tires
}

func (m *MockRepository) Save(path string) error {
	return m.Called(path).Error(0)
}

func (m *MockRepository) Load(path string) error {
	return m.Called(path).Error(0)
}

func (m *MockRepository) Export(path string, transform store.Transform) error {
	return m.Called(path, transform).Error(0)
}

func (m *MockRepository) Snapshot() store.Document {
	args := m.Called()
	doc, _ := args.Get(0).(store.Document)
	return doc
}

func newService(repo store.Repository, t *testing.T) FitmentService {
	t.Helper()
	log := logger.New("test")
	gen := mesh.NewGenerator(mesh.DefaultOptions())
	return NewFitmentService(repo, gen, log, "wheel_database.json", "exports")
}

func TestUpsertWheel_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	spec := models.NewWheelSpec("Sport17")
	mockRepo.On("AddWheel", spec).Return()

	// Act
	err := service.UpsertWheel(context.Background(), spec)

	// Assert
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpsertWheel_EmptyName(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	// Act
	err := service.UpsertWheel(context.Background(), models.WheelSpec{})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidName)
	mockRepo.AssertNotCalled(t, "AddWheel")
}

func TestWheel_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	expected := models.NewWheelSpec("Sport17")
	mockRepo.On("GetWheel", "Sport17").Return(&expected)

	// Act
	spec, err := service.Wheel(context.Background(), "Sport17")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "Sport17", spec.Name)
	assert.Equal(t, 17.0, spec.Diameter)
	mockRepo.AssertExpectations(t)
}

func TestWheel_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	mockRepo.On("GetWheel", "Ghost").Return(nil)

	// Act
	spec, err := service.Wheel(context.Background(), "Ghost")

	// Assert
	assert.Nil(t, spec)
	assert.ErrorIs(t, err, ErrWheelNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAddTireCombination_RecomputesDerivedGeometry(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	wheel := models.NewWheelSpec("Sport17")
	mockRepo.On("GetWheel", "Sport17").Return(&wheel)
	mockRepo.On("AddTireCombination", "Sport17", mock.AnythingOfType("models.TireSpec")).Return()

	tire := models.TireSpec{Width: 225, AspectRatio: 45, Diameter: 17, LoadIndex: 91, SpeedRating: "Y"}

	// Act
	stored, err := service.AddTireCombination(context.Background(), "Sport17", tire)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 101.25, stored.SidewallHeightMM, 1e-9)
	assert.InDelta(t, 634.3, stored.OverallDiameterMM, 1e-9)
	mockRepo.AssertExpectations(t)
}

func TestAddTireCombination_UnknownWheel(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	mockRepo.On("GetWheel", "Ghost").Return(nil)

	// Act
	_, err := service.AddTireCombination(context.Background(), "Ghost", models.NewTireSpec(225, 45, 17))

	// Assert
	assert.ErrorIs(t, err, ErrWheelNotFound)
	mockRepo.AssertNotCalled(t, "AddTireCombination")
}

func TestTireCombinations_UnknownWheel(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	mockRepo.On("GetWheel", "Ghost").Return(nil)

	// Act
	tires, err := service.TireCombinations(context.Background(), "Ghost")

	// Assert
	assert.Nil(t, tires)
	assert.ErrorIs(t, err, ErrWheelNotFound)
	mockRepo.AssertNotCalled(t, "TireCombinations")
}

func TestGenerateTireMesh_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	// Act
	m, err := service.GenerateTireMesh(context.Background(), models.NewTireSpec(225, 45, 17), 17)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.NotEmpty(t, m.Vertices)
	assert.NotEmpty(t, m.Faces)
	assert.Equal(t, len(m.Vertices), len(m.Normals))
}

func TestGenerateTireMesh_DegenerateSpec(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	// Act
	m, err := service.GenerateTireMesh(context.Background(), models.TireSpec{Width: 0, AspectRatio: 45, Diameter: 17}, 17)

	// Assert
	assert.Nil(t, m)
	assert.ErrorIs(t, err, mesh.ErrDegenerateProfile)
}

func TestImportWheel_NormalizesAndRegisters(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	spec := models.NewWheelSpec("Imported17")
	objects := []importer.Object{
		{Name: "rim", BBox: r3.Vec{X: 2.0, Y: 1.8, Z: 0.5}},
	}

	mockRepo.On("AddWheel", mock.MatchedBy(func(s models.WheelSpec) bool {
		return s.Name == "Imported17" && s.ModelPath == "/models/rim.glb"
	})).Return()

	// Act
	res, err := service.ImportWheel(context.Background(), objects, spec, "/models/rim.glb")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Scaled)
	assert.InDelta(t, 17*importer.MetersPerInch/2.0, res.ScaleFactor, 1e-9)
	mockRepo.AssertExpectations(t)
}

func TestImportWheel_NoObjects(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	// Act
	res, err := service.ImportWheel(context.Background(), nil, models.NewWheelSpec("Empty"), "/models/none.glb")

	// Assert
	assert.Nil(t, res)
	assert.ErrorIs(t, err, importer.ErrNoObjects)
	mockRepo.AssertNotCalled(t, "AddWheel")
}

func TestSaveDatabase_RepositoryError(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	saveErr := errors.New("disk full")
	mockRepo.On("Save", "wheel_database.json").Return(saveErr)

	// Act
	err := service.SaveDatabase(context.Background())

	// Assert
	assert.ErrorIs(t, err, saveErr)
	mockRepo.AssertExpectations(t)
}

func TestExportDatabase_StripsPathComponents(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	mockRepo.On("Export", "exports/backup.json", mock.Anything).Return(nil)

	// Act
	path, err := service.ExportDatabase(context.Background(), "../../backup.json")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "exports/backup.json", path)
	mockRepo.AssertExpectations(t)
}

func TestExportDatabase_EmptyFilename(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	// Act
	_, err := service.ExportDatabase(context.Background(), "")

	// Assert
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Export")
}

func TestFitmentSheet_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	wheel := models.NewWheelSpec("Sport17")
	mockRepo.On("GetWheel", "Sport17").Return(&wheel)
	mockRepo.On("TireCombinations", "Sport17").Return([]models.TireSpec{
		models.NewTireSpec(225, 45, 17),
	})

	// Act
	pdf, err := service.FitmentSheet(context.Background(), "Sport17")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
	mockRepo.AssertExpectations(t)
}

func TestFitmentSheet_UnknownWheel(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	service := newService(mockRepo, t)

	mockRepo.On("GetWheel", "Ghost").Return(nil)

	// Act
	pdf, err := service.FitmentSheet(context.Background(), "Ghost")

	// Assert
	assert.Nil(t, pdf)
	assert.ErrorIs(t, err, ErrWheelNotFound)
}
