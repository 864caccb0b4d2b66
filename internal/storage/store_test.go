package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{Time: 0.002, Body: "ball1", Theta: 0.50012, Omega: 0.0234, Speed: 0.0468, Kinetic: 0.000109, Potential: 1.839872, Total: 1.839981, Centripetal: 0.0011},
		{Time: 0.002, Body: "ball2", Theta: 1.00041, Omega: 0.0412, Speed: 0.0824, Kinetic: 0.000509, Potential: 2.52774, Total: 2.528249, Centripetal: 0.0034},
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Preset:     "test",
		Dt:         0.002,
		Duration:   1.0,
		Gravity:    9.8,
		Radius:     2.0,
		EditPolicy: "free",
		Bodies: []BodyMeta{
			{Name: "ball1", Mass: 0.1, Theta: 0.5},
			{Name: "ball2", Mass: 0.15, Theta: 1.0},
		},
		Metrics: map[string]float64{"energy_drift": 0.0015},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), sampleRecords())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %s, got %s", runID, meta.ID)
	}
	if meta.Gravity != 9.8 {
		t.Errorf("expected gravity 9.8, got %f", meta.Gravity)
	}
	if len(meta.Bodies) != 2 || meta.Bodies[1].Mass != 0.15 {
		t.Errorf("bodies not preserved: %+v", meta.Bodies)
	}
	if meta.Metrics["energy_drift"] != 0.0015 {
		t.Errorf("expected drift 0.0015, got %f", meta.Metrics["energy_drift"])
	}

	records, err := st.LoadRecords(runID)
	if err != nil {
		t.Fatalf("load records failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Body != "ball2" || records[1].Total != 2.528249 {
		t.Errorf("unexpected record: %+v", records[1])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(testMeta(), nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(testMeta(), sampleRecords())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), sampleRecords())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(st.RecordsPath(runID)); os.IsNotExist(err) {
		t.Error("records.csv not created")
	}
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := testMeta()
	meta.Metrics["energy_drift"] = math.NaN()
	runID, err := st.Save(meta, sampleRecords())
	if err == nil {
		t.Fatalf("expected save to fail, got run %q", runID)
	}
	if runID != "" {
		t.Errorf("failed save returned run id %q", runID)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directories, found %d", len(entries))
	}
}

func TestWriteFileReportsWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	boom := errors.New("disk full")
	err := writeFile(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected write error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, testMeta(), sampleRecords()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Steps != 1 {
		t.Errorf("expected 1 step, got %d", got.Steps)
	}
	if got.Records[0].Theta != 0.5001 {
		t.Errorf("expected rounded theta 0.5001, got %v", got.Records[0].Theta)
	}
}
