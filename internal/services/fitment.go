package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/treadlab/fitment/internal/importer"
	"github.com/treadlab/fitment/internal/logger"
	"github.com/treadlab/fitment/internal/mesh"
	"github.com/treadlab/fitment/internal/models"
	"github.com/treadlab/fitment/internal/sheet"
	"github.com/treadlab/fitment/internal/store"
)

// Service-level errors
var (
	ErrInvalidName   = errors.New("wheel name must not be empty")
	ErrWheelNotFound = errors.New("wheel not found")
)

// FitmentService defines the business logic over the wheel database, the
// tire mesh generator, and the import normalizer.
type FitmentService interface {
	// UpsertWheel inserts or overwrites a wheel. Returns ErrInvalidName
	// for an empty name; all other field values are accepted as given.
	UpsertWheel(ctx context.Context, spec models.WheelSpec) error

	// Wheel returns the named wheel or ErrWheelNotFound.
	Wheel(ctx context.Context, name string) (*models.WheelSpec, error)

	// WheelNames lists all wheel names in sorted order.
	WheelNames(ctx context.Context) []string

	// RemoveWheel deletes a wheel and its tire combinations; unknown
	// names are a no-op.
	RemoveWheel(ctx context.Context, name string)

	// AddTireCombination appends a tire spec to an existing wheel's list.
	// Returns the stored spec with derived geometry recomputed, or
	// ErrWheelNotFound.
	AddTireCombination(ctx context.Context, wheelName string, tire models.TireSpec) (models.TireSpec, error)

	// TireCombinations returns an existing wheel's tire list in insertion
	// order, or ErrWheelNotFound.
	TireCombinations(ctx context.Context, wheelName string) ([]models.TireSpec, error)

	// GenerateTireMesh builds a procedural tire surface for the spec on a
	// wheel of the given diameter in inches. Degenerate inputs surface as
	// mesh.ErrDegenerateProfile.
	GenerateTireMesh(ctx context.Context, tire models.TireSpec, wheelDiameterIn float64) (*mesh.Mesh, error)

	// ImportWheel normalizes imported geometry to the spec's rim diameter
	// and registers the wheel with ModelPath set to sourcePath.
	ImportWheel(ctx context.Context, objects []importer.Object, spec models.WheelSpec, sourcePath string) (*importer.Result, error)

	// SaveDatabase persists the database to its configured file.
	SaveDatabase(ctx context.Context) error

	// ExportDatabase writes the export document under the configured
	// export directory and returns the full path.
	ExportDatabase(ctx context.Context, filename string) (string, error)

	// Snapshot returns an immutable copy of the whole database for
	// read-only consumers.
	Snapshot(ctx context.Context) store.Document

	// FitmentSheet renders the printable PDF sheet for a wheel, or
	// ErrWheelNotFound.
	FitmentSheet(ctx context.Context, name string) ([]byte, error)
}

// fitmentService is the concrete implementation of FitmentService.
type fitmentService struct {
	repo      store.Repository
	gen       *mesh.Generator
	log       *logger.Logger
	dbFile    string
	exportDir string
}

// NewFitmentService creates a new instance of FitmentService.
func NewFitmentService(repo store.Repository, gen *mesh.Generator, log *logger.Logger, dbFile, exportDir string) FitmentService {
	return &fitmentService{
		repo:      repo,
		gen:       gen,
		log:       log,
		dbFile:    dbFile,
		exportDir: exportDir,
	}
}

func (s *fitmentService) UpsertWheel(ctx context.Context, spec models.WheelSpec) error {
	if spec.Name == "" {
		return ErrInvalidName
	}

	s.repo.AddWheel(spec)
	s.log.Info("Wheel stored", map[string]interface{}{
		"name":     spec.Name,
		"diameter": spec.Diameter,
		"width":    spec.Width,
	})
	return nil
}

func (s *fitmentService) Wheel(ctx context.Context, name string) (*models.WheelSpec, error) {
	spec := s.repo.GetWheel(name)
	if spec == nil {
		s.log.Debug("Wheel lookup missed", map[string]interface{}{"name": name})
		return nil, ErrWheelNotFound
	}
	return spec, nil
}

func (s *fitmentService) WheelNames(ctx context.Context) []string {
	return s.repo.WheelNames()
}

func (s *fitmentService) RemoveWheel(ctx context.Context, name string) {
	s.repo.RemoveWheel(name)
	s.log.Info("Wheel removed", map[string]interface{}{"name": name})
}

func (s *fitmentService) AddTireCombination(ctx context.Context, wheelName string, tire models.TireSpec) (models.TireSpec, error) {
	if s.repo.GetWheel(wheelName) == nil {
		return models.TireSpec{}, ErrWheelNotFound
	}

	tire.Recompute()
	s.repo.AddTireCombination(wheelName, tire)
	s.log.Info("Tire combination added", map[string]interface{}{
		"wheel": wheelName,
		"size":  tire.SizeString(),
	})
	return tire, nil
}

func (s *fitmentService) TireCombinations(ctx context.Context, wheelName string) ([]models.TireSpec, error) {
	if s.repo.GetWheel(wheelName) == nil {
		return nil, ErrWheelNotFound
	}
	return s.repo.TireCombinations(wheelName), nil
}

func (s *fitmentService) GenerateTireMesh(ctx context.Context, tire models.TireSpec, wheelDiameterIn float64) (*mesh.Mesh, error) {
	m, err := s.gen.GenerateTire(tire, wheelDiameterIn*models.MMPerInch)
	if err != nil {
		s.log.Warn("Tire mesh generation rejected", map[string]interface{}{
			"size":           tire.SizeString(),
			"wheel_diameter": wheelDiameterIn,
			"reason":         err.Error(),
		})
		return nil, err
	}

	s.log.Info("Tire mesh generated", map[string]interface{}{
		"name":     m.Name,
		"vertices": len(m.Vertices),
		"faces":    len(m.Faces),
	})
	return m, nil
}

func (s *fitmentService) ImportWheel(ctx context.Context, objects []importer.Object, spec models.WheelSpec, sourcePath string) (*importer.Result, error) {
	if spec.Name == "" {
		return nil, ErrInvalidName
	}

	res, err := importer.Normalize(objects, spec)
	if err != nil {
		s.log.Warn("Wheel import failed", map[string]interface{}{
			"name":   spec.Name,
			"source": sourcePath,
			"reason": err.Error(),
		})
		return nil, err
	}

	spec.ModelPath = sourcePath
	s.repo.AddWheel(spec)

	s.log.Info("Wheel imported", map[string]interface{}{
		"name":         spec.Name,
		"object":       res.Object.Name,
		"scale_factor": res.ScaleFactor,
		"scaled":       res.Scaled,
		"source":       sourcePath,
	})
	return res, nil
}

func (s *fitmentService) SaveDatabase(ctx context.Context) error {
	if err := s.repo.Save(s.dbFile); err != nil {
		s.log.Error("Failed to save wheel database", err, map[string]interface{}{
			"path": s.dbFile,
		})
		return err
	}
	s.log.Info("Wheel database saved", map[string]interface{}{"path": s.dbFile})
	return nil
}

func (s *fitmentService) ExportDatabase(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("export filename must not be empty")
	}

	// Exports land in the configured directory regardless of any path
	// components in the requested name.
	path := filepath.Join(s.exportDir, filepath.Base(filename))
	if err := s.repo.Export(path, nil); err != nil {
		s.log.Error("Failed to export wheel database", err, map[string]interface{}{
			"path": path,
		})
		return "", err
	}

	s.log.Info("Wheel database exported", map[string]interface{}{"path": path})
	return path, nil
}

func (s *fitmentService) Snapshot(ctx context.Context) store.Document {
	return s.repo.Snapshot()
}

func (s *fitmentService) FitmentSheet(ctx context.Context, name string) ([]byte, error) {
	spec := s.repo.GetWheel(name)
	if spec == nil {
		return nil, ErrWheelNotFound
	}

	pdf, err := sheet.Build(*spec, s.repo.TireCombinations(name))
	if err != nil {
		s.log.Error("Failed to build fitment sheet", err, map[string]interface{}{
			"name": name,
		})
		return nil, fmt.Errorf("failed to build fitment sheet for %s: %w", name, err)
	}
	return pdf, nil
}
