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

	"github.com/san-kum/autopark/internal/park"
	"github.com/san-kum/autopark/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	telemetryFile  = "telemetry.csv"
	trajectoryFile = "trajectory.csv"
)

var telemetryHeader = []string{
	"tick", "state", "raw", "filtered", "error", "derivative", "steering",
	"output", "left", "right", "gap_ticks", "stabilized", "reinit", "found",
}

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
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Side       string             `json:"side"`
	Integrator string             `json:"integrator"`
	Kp         float64            `json:"kp"`
	Kd         float64            `json:"kd"`
	State      string             `json:"state"`
	Ticks      int                `json:"ticks"`
	ElapsedMs  int                `json:"elapsed_ms"`
	Parked     bool               `json:"parked"`
	Error      string             `json:"error,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
	Geometry   sim.Geometry       `json:"geometry"`
}

// Run is everything persisted for one maneuver.
type Run struct {
	Meta       RunMetadata
	Ticks      []park.TickRecord
	Trajectory []sim.Pose
}

// TickLog is a park.Observer that keeps every tick record.
type TickLog struct {
	Records []park.TickRecord
}

func (l *TickLog) OnTick(rec park.TickRecord)       { l.Records = append(l.Records, rec) }
func (l *TickLog) OnTransition(from, to park.State) {}

// Save writes run into a new directory and returns its ID. The ID and
// timestamp are assigned here when empty.
func (s *Store) Save(run *Run) (string, error) {
	meta := run.Meta
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		name := meta.Preset
		if name == "" {
			name = "run"
		}
		meta.ID = fmt.Sprintf("%s_%d_%d", name, meta.Timestamp.Unix(), meta.Seed)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(run.Ticks))
	for _, r := range run.Ticks {
		rows = append(rows, []string{
			strconv.Itoa(r.Tick), r.State.String(), strconv.Itoa(r.Raw), strconv.Itoa(r.Filtered),
			strconv.Itoa(r.Error), strconv.Itoa(r.Derivative), strconv.Itoa(r.Steering),
			strconv.Itoa(r.Output), strconv.Itoa(r.Left), strconv.Itoa(r.Right),
			strconv.Itoa(r.GapTicks), strconv.FormatBool(r.Stabilized), strconv.FormatBool(r.Reinit),
			strconv.FormatBool(r.Found),
		})
	}
	if err := writeCSV(filepath.Join(runDir, telemetryFile), telemetryHeader, rows); err != nil {
		return "", err
	}

	rows = rows[:0]
	for _, p := range run.Trajectory {
		rows = append(rows, []string{
			strconv.FormatFloat(p.T, 'f', 3, 64),
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
			strconv.FormatFloat(p.Theta, 'f', 6, 64),
		})
	}
	if err := writeCSV(filepath.Join(runDir, trajectoryFile), []string{"time", "x", "y", "theta"}, rows); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}

	return &meta, nil
}

// TelemetryPath returns the telemetry CSV of runID, for export.
func (s *Store) TelemetryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, telemetryFile)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func (s *Store) LoadTelemetry(runID string) ([]park.TickRecord, error) {
	records, err := readCSV(s.TelemetryPath(runID))
	if err != nil {
		return nil, err
	}

	out := make([]park.TickRecord, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(telemetryHeader) {
			return nil, fmt.Errorf("telemetry row %d: expected %d fields, got %d", i+1, len(telemetryHeader), len(rec))
		}
		state, err := park.ParseState(rec[1])
		if err != nil {
			return nil, fmt.Errorf("telemetry row %d: %w", i+1, err)
		}
		var ints [10]int
		for j, col := range []int{0, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
			if ints[j], err = strconv.Atoi(rec[col]); err != nil {
				return nil, fmt.Errorf("telemetry row %d column %s: %w", i+1, telemetryHeader[col], err)
			}
		}
		var flags [3]bool
		for j := range flags {
			if flags[j], err = strconv.ParseBool(rec[11+j]); err != nil {
				return nil, fmt.Errorf("telemetry row %d column %s: %w", i+1, telemetryHeader[11+j], err)
			}
		}
		out = append(out, park.TickRecord{
			Tick: ints[0], State: state, Raw: ints[1], Filtered: ints[2], Error: ints[3],
			Derivative: ints[4], Steering: ints[5], Output: ints[6], Left: ints[7], Right: ints[8],
			GapTicks: ints[9], Stabilized: flags[0], Reinit: flags[1], Found: flags[2],
		})
	}
	return out, nil
}

func (s *Store) LoadTrajectory(runID string) ([]sim.Pose, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}

	out := make([]sim.Pose, 0, len(records))
	for i, rec := range records {
		if len(rec) != 4 {
			return nil, fmt.Errorf("trajectory row %d: expected 4 fields, got %d", i+1, len(rec))
		}
		var v [4]float64
		for j := range v {
			if v[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, fmt.Errorf("trajectory row %d: %w", i+1, err)
			}
		}
		out = append(out, sim.Pose{T: v[0], X: v[1], Y: v[2], Theta: v[3]})
	}
	return out, nil
}
