package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/treadlab/fitment/internal/models"
)

// Document is the on-disk shape of a wheel database: two top-level mappings
// mirroring the in-memory state exactly. Tire entries carry only their size
// and rating inputs; derived geometry is recomputed on load. The export
// format shares this shape today but is produced through Export so the two
// can diverge without breaking either consumer.
type Document struct {
	Wheels           map[string]models.WheelSpec  `json:"wheels"`
	TireCombinations map[string][]models.TireSpec `json:"tire_combinations"`
}

// Transform optionally rewrites a Document before Export writes it. A nil
// Transform exports the document unchanged.
type Transform func(*Document) error

// Repository defines the data-access operations for wheels and their tire
// combinations.
//
// Lookup absence is not an error: GetWheel returns nil and RemoveWheel is a
// no-op for unknown names. AddTireCombination deliberately does not require
// the wheel to exist; the database favors tolerant round-tripping over
// referential strictness.
type Repository interface {
	// AddWheel inserts or overwrites a wheel keyed by its name
	// (last-write-wins).
	AddWheel(spec models.WheelSpec)

	// GetWheel returns a copy of the named wheel, or nil when absent.
	GetWheel(name string) *models.WheelSpec

	// WheelNames returns all wheel names in sorted order.
	WheelNames() []string

	// RemoveWheel deletes the wheel and its tire combinations. Unknown
	// names are a no-op.
	RemoveWheel(name string)

	// AddTireCombination appends a tire spec to the named wheel's list,
	// creating the list on first use.
	AddTireCombination(wheelName string, tire models.TireSpec)

	// TireCombinations returns the tire list for a wheel in insertion
	// order; empty for unknown names.
	TireCombinations(wheelName string) []models.TireSpec

	// Save writes the database to path as an indented JSON document via a
	// temp file and rename, so a failed save leaves any previous file
	// intact.
	Save(path string) error

	// Load replaces the in-memory state with the document at path. A
	// missing file is success with unchanged state.
	Load(path string) error

	// Export writes the database document to a caller-chosen path,
	// optionally rewritten by transform.
	Export(path string, transform Transform) error

	// Snapshot returns an independent deep copy of the database for
	// read-only consumers.
	Snapshot() Document
}

// Store is the in-memory wheel database backing Repository. It is created
// empty, owned by whoever constructs it, and safe for concurrent use; all
// access goes through an internal RWMutex rather than a process-global
// instance.
type Store struct {
	mu     sync.RWMutex
	wheels map[string]models.WheelSpec
	combos map[string][]models.TireSpec
}

var _ Repository = (*Store)(nil)

// New creates an empty wheel database.
func New() *Store {
	return &Store{
		wheels: make(map[string]models.WheelSpec),
		combos: make(map[string][]models.TireSpec),
	}
}

// AddWheel inserts or overwrites a wheel keyed by spec.Name.
func (s *Store) AddWheel(spec models.WheelSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wheels[spec.Name] = cloneWheel(spec)
}

// GetWheel returns a copy of the named wheel, or nil when absent.
func (s *Store) GetWheel(name string) *models.WheelSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.wheels[name]
	if !ok {
		return nil
	}
	out := cloneWheel(spec)
	return &out
}

// WheelNames returns all wheel names in sorted order.
func (s *Store) WheelNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.wheels))
	for name := range s.wheels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveWheel deletes the wheel entry and cascades to its tire-combination
// list. Removing an unknown name is a no-op, not an error.
func (s *Store) RemoveWheel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wheels, name)
	delete(s.combos, name)
}

// AddTireCombination appends to the list for wheelName, creating it first if
// absent. The wheel itself is not required to exist.
func (s *Store) AddTireCombination(wheelName string, tire models.TireSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combos[wheelName] = append(s.combos[wheelName], tire)
}

// TireCombinations returns the tire list for a wheel in insertion order.
func (s *Store) TireCombinations(wheelName string) []models.TireSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	combos := s.combos[wheelName]
	out := make([]models.TireSpec, len(combos))
	copy(out, combos)
	return out
}

// Snapshot returns a deep copy of the database document. The copy shares no
// mutable state with the store, so export and preview consumers can read it
// while writers continue.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := Document{
		Wheels:           make(map[string]models.WheelSpec, len(s.wheels)),
		TireCombinations: make(map[string][]models.TireSpec, len(s.combos)),
	}
	for name, spec := range s.wheels {
		doc.Wheels[name] = cloneWheel(spec)
	}
	for name, combos := range s.combos {
		list := make([]models.TireSpec, len(combos))
		copy(list, combos)
		doc.TireCombinations[name] = list
	}
	return doc
}

// Save serializes the database to path with 2-space indentation. The write
// goes to a temp file in the target directory followed by a rename, so a
// serialization or I/O failure leaves any previous file untouched.
func (s *Store) Save(path string) error {
	doc := s.Snapshot()
	if err := writeDocument(path, &doc); err != nil {
		return fmt.Errorf("failed to save wheel database to %s: %w", path, err)
	}
	return nil
}

// Load rebuilds both mappings from the document at path, overwriting the
// in-memory state. A nonexistent file is treated as success with the state
// unchanged. Malformed JSON or a document missing either top-level mapping
// is an error and leaves the state unchanged.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read wheel database %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse wheel database %s: %w", path, err)
	}
	for _, key := range []string{"wheels", "tire_combinations"} {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("wheel database %s is missing the %q mapping", path, key)
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode wheel database %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.wheels = make(map[string]models.WheelSpec, len(doc.Wheels))
	for name, spec := range doc.Wheels {
		s.wheels[name] = spec
	}
	s.combos = make(map[string][]models.TireSpec, len(doc.TireCombinations))
	for name, combos := range doc.TireCombinations {
		s.combos[name] = combos
	}
	return nil
}

// Export writes the database document to a caller-chosen path for the
// external consuming tool, optionally rewritten by transform first.
func (s *Store) Export(path string, transform Transform) error {
	doc := s.Snapshot()
	if transform != nil {
		if err := transform(&doc); err != nil {
			return fmt.Errorf("export transform failed: %w", err)
		}
	}
	if err := writeDocument(path, &doc); err != nil {
		return fmt.Errorf("failed to export wheel database to %s: %w", path, err)
	}
	return nil
}

// writeDocument marshals doc with 2-space indentation and atomically
// replaces path via temp-file-then-rename.
func writeDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fitment-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set document permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// cloneWheel copies a wheel spec including its preserved unknown keys, so
// callers cannot alias the store's internal state.
func cloneWheel(spec models.WheelSpec) models.WheelSpec {
	out := spec
	if spec.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(spec.Extra))
		for key, raw := range spec.Extra {
			out.Extra[key] = raw
		}
	}
	return out
}
