package artifact

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

func TestLatestDumps_PicksNewestPerDate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ds := sampleDataset()
	report := usecase.Validate(ds, usecase.DefaultValidationRules())
	writer := newTestWriter()

	stamps := []time.Time{
		time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 19, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 19, 20, 15, 0, 0, time.UTC),
		time.Date(2025, 10, 20, 7, 45, 0, 0, time.UTC),
	}
	for _, at := range stamps {
		if _, err := writer.Write(context.Background(), ds, report, dir, at); err != nil {
			t.Fatalf("write at %s: %v", at, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "scratch"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := NewLoader().LatestDumps(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("latest dumps: %v", err)
	}
	want := []string{
		filepath.Join(dir, "2025-10-19", "fpl_data_201500.json"),
		filepath.Join(dir, "2025-10-20", "fpl_data_074500.json"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected dumps:\n got=%v\nwant=%v", got, want)
	}
}

func TestLatestDumps_MissingDirIsEmpty(t *testing.T) {
	t.Parallel()

	got, err := LatestDumps(filepath.Join(t.TempDir(), "absent"), 2)
	if err != nil {
		t.Fatalf("latest dumps: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no dumps, got %v", got)
	}
}

func TestLoadDataset_RejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fpl_data_000000.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadDataset(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
