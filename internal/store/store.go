package store

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/zhaobenny/costopt/internal/model"
)

// Artifact file names, relative to the store directory
const (
	DescriptionFile = "project_description.txt"
	ProfileFile     = "project_profile.json"
	BillingFile     = "mock_billing.json"
	ReportFile      = "cost_optimization_report.json"
)

// ErrNotFound is returned when an artifact has not been written yet
var ErrNotFound = errors.New("artifact not found")

// Store reads and writes pipeline artifacts in a single directory
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Dir returns the store directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of an artifact
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveDescription writes the raw project description verbatim
func (s *Store) SaveDescription(text string) error {
	return s.writeAtomic(DescriptionFile, []byte(text))
}

// LoadDescription reads the raw project description
func (s *Store) LoadDescription() (string, error) {
	data, err := s.read(DescriptionFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveProfile writes the project profile
func (s *Store) SaveProfile(p *model.ProjectProfile) error {
	return s.saveJSON(ProfileFile, p)
}

// LoadProfile reads the project profile
func (s *Store) LoadProfile() (*model.ProjectProfile, error) {
	var p model.ProjectProfile
	if err := s.loadJSON(ProfileFile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveBilling writes the billing records
func (s *Store) SaveBilling(records []model.BillingRecord) error {
	return s.saveJSON(BillingFile, records)
}

// LoadBilling reads the billing records
func (s *Store) LoadBilling() ([]model.BillingRecord, error) {
	var records []model.BillingRecord
	if err := s.loadJSON(BillingFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveReport writes the cost optimization report
func (s *Store) SaveReport(r *model.Report) error {
	return s.saveJSON(ReportFile, r)
}

// LoadReport reads the cost optimization report
func (s *Store) LoadReport() (*model.Report, error) {
	var r model.Report
	if err := s.loadJSON(ReportFile, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Digest returns a hex BLAKE2b-256 digest over the named artifacts, in order.
// It identifies the exact inputs a report was computed from.
func (s *Store) Digest(names ...string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		data, err := s.read(name)
		if err != nil {
			return "", err
		}
		// Length-prefix each file so boundaries are unambiguous
		fmt.Fprintf(h, "%s:%d:", name, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) saveJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.writeAtomic(name, append(data, '\n'))
}

func (s *Store) loadJSON(name string, v any) error {
	data, err := s.read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// writeAtomic replaces name only once the new content is fully on disk,
// so a failed write leaves the previous artifact intact
func (s *Store) writeAtomic(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.Path(name))
}
