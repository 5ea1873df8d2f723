// Package storage persists recorded runs: JSON metadata plus CSV event
// and series logs per run directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
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

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Dt        float64   `json:"dt"`
	Duration  float64   `json:"duration"`
	Particles int       `json:"particles"`
	Followers int       `json:"followers"`
	Fractures int       `json:"fractures"`
	Cuts      int       `json:"cuts"`
	Impacts   int       `json:"impacts"`
}

// SaveRun writes one recorded run and returns its ID.
func (s *Store) SaveRun(meta RunMetadata, rec *Recorder) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Fractures = rec.Count("fracture")
	meta.Cuts = rec.Count("cut")
	meta.Impacts = rec.Count("impact")

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "meta.json"), data, 0644); err != nil {
		return "", err
	}

	if err := writeEventsCSV(filepath.Join(runDir, "events.csv"), rec.Rows()); err != nil {
		return "", err
	}
	if err := writeSeriesCSV(filepath.Join(runDir, "series.csv"), rec.Series()); err != nil {
		return "", err
	}
	return runID, nil
}

func writeEventsCSV(path string, rows []EventRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "kind", "x", "y", "z", "detail"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.T, 'f', -1, 64),
			r.Kind,
			strconv.FormatFloat(r.X, 'f', -1, 64),
			strconv.FormatFloat(r.Y, 'f', -1, 64),
			strconv.FormatFloat(r.Z, 'f', -1, 64),
			strconv.Itoa(r.Detail),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeSeriesCSV(path string, rows []SeriesRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "stretch", "dwell"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.T, 'f', -1, 64),
			strconv.FormatFloat(r.Stretch, 'f', -1, 64),
			strconv.FormatFloat(r.Dwell, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// List returns metadata for all saved runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue // skip foreign directories
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "meta.json"))
	if err != nil {
		return RunMetadata{}, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return RunMetadata{}, err
	}
	return meta, nil
}

// LoadSeries reads the stretch/dwell series of a saved run.
func (s *Store) LoadSeries(runID string) ([]SeriesRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var rows []SeriesRow
	for i, rec := range records {
		if i == 0 || len(rec) < 3 {
			continue // header
		}
		t, err1 := strconv.ParseFloat(rec[0], 64)
		stretch, err2 := strconv.ParseFloat(rec[1], 64)
		dwell, err3 := strconv.ParseFloat(rec[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		rows = append(rows, SeriesRow{T: t, Stretch: stretch, Dwell: dwell})
	}
	return rows, nil
}

// ExportJSON writes a run's metadata and events as a single JSON blob.
func (s *Store) ExportJSON(runID string) ([]byte, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(struct {
		Meta   RunMetadata `json:"meta"`
		Events []EventRow  `json:"events"`
	}{meta, events}, "", "  ")
}

// LoadEvents reads the event log of a saved run.
func (s *Store) LoadEvents(runID string) ([]EventRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "events.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var rows []EventRow
	for i, rec := range records {
		if i == 0 || len(rec) < 6 {
			continue
		}
		t, _ := strconv.ParseFloat(rec[0], 64)
		x, _ := strconv.ParseFloat(rec[2], 64)
		y, _ := strconv.ParseFloat(rec[3], 64)
		z, _ := strconv.ParseFloat(rec[4], 64)
		detail, _ := strconv.Atoi(rec[5])
		rows = append(rows, EventRow{T: t, Kind: rec[1], X: x, Y: y, Z: z, Detail: detail})
	}
	return rows, nil
}
