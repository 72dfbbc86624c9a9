// Package storage records rendered frames to disk: a directory per run with
// metadata and a CSV position track, and an optional SQLite frame table.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	metadataFile = "metadata.json"
	trackFile    = "positions.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID              string    `json:"id"`
	Preset          string    `json:"preset"`
	Catalog         string    `json:"catalog"`
	Timestamp       time.Time `json:"timestamp"`
	Seed            int64     `json:"seed"`
	SpeedFactor     float64   `json:"speed_factor"`
	DistanceScale   float64   `json:"distance_scale"`
	RadiusScale     float64   `json:"radius_scale"`
	AngularRateBase float64   `json:"angular_rate_base"`
	Dt              float64   `json:"dt"`
	Duration        float64   `json:"duration"`
	Frames          int       `json:"frames"`
	Bodies          []string  `json:"bodies"`
}

// Save writes meta and track under a new run directory and returns its ID.
// An empty meta.ID is generated from the preset name and the clock.
func (s *Store) Save(meta RunMetadata, track *Track) (string, error) {
	if meta.ID == "" {
		label := meta.Preset
		if label == "" {
			label = "run"
		}
		meta.ID = fmt.Sprintf("%s_%d", label, time.Now().UnixNano())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Frames = track.Len()
	meta.Bodies = track.Bodies

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trackFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrackCSV(csvFile, track); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteTrackCSV writes a header of time followed by x, y and rotation
// columns per body, then one row per frame.
func WriteTrackCSV(out io.Writer, track *Track) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for _, b := range track.Bodies {
		header = append(header, b+".x", b+".y", b+".rot")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range track.Times {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(t, 'f', 6, 64))
		for _, smp := range track.Samples[i] {
			row = append(row,
				strconv.FormatFloat(smp.X, 'f', 6, 64),
				strconv.FormatFloat(smp.Y, 'f', 6, 64),
				strconv.FormatFloat(smp.Rotation, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrack(runID string) (*Track, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), trackFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTrackCSV(file)
}

// ReadTrackCSV parses the format written by WriteTrackCSV.
func ReadTrackCSV(in io.Reader) (*Track, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty track")
	}

	header := records[0]
	if len(header) == 0 || header[0] != "time" || (len(header)-1)%3 != 0 {
		return nil, fmt.Errorf("storage: malformed track header %v", header)
	}
	bodies := make([]string, 0, (len(header)-1)/3)
	for i := 1; i < len(header); i += 3 {
		bodies = append(bodies, strings.TrimSuffix(header[i], ".x"))
	}

	track := NewTrack(bodies)
	for n, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %d: %w", n+1, i, err)
			}
			vals[i] = v
		}
		row := make([]Sample, len(bodies))
		for b := range bodies {
			row[b] = Sample{X: vals[1+3*b], Y: vals[2+3*b], Rotation: vals[3+3*b]}
		}
		track.Times = append(track.Times, vals[0])
		track.Samples = append(track.Samples, row)
	}
	return track, nil
}

// ExportData is the JSON form of a complete run.
type ExportData struct {
	Metadata RunMetadata `json:"metadata"`
	Track    *Track      `json:"track"`
}

// ExportJSON writes the run's metadata and track as one indented document.
func (s *Store) ExportJSON(out io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	track, err := s.LoadTrack(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: *meta, Track: track})
}
