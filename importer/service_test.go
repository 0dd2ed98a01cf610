package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun_ImportsGenericCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.csv")
	content := `ProjectNumber,Start,End
P-100,2026-03-02 09:00,2026-03-02 11:30
P-200,2026-03-02 12:15,2026-03-02 14:00
,2026-03-02 14:30,2026-03-02 15:00
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mapper, err := MapperByName("generic")
	if err != nil {
		t.Fatalf("mapper by name: %v", err)
	}

	result, err := Run([]string{path}, "", mapper)
	if err != nil {
		t.Fatalf("run import: %v", err)
	}

	if result.FilesProcessed != 1 || result.RowsRead != 3 || result.RowsMapped != 3 {
		t.Fatalf("unexpected counters: %+v", result)
	}

	first := result.Entries[0]
	if first.ProjectNumber != "P-100" {
		t.Fatalf("expected project number P-100, got %q", first.ProjectNumber)
	}
	expectedStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	if !first.StartDateTime.Equal(expectedStart) {
		t.Fatalf("unexpected start: %v", first.StartDateTime)
	}
	if first.DurationSeconds() != 9000 {
		t.Fatalf("expected 9000s duration, got %d", first.DurationSeconds())
	}

	// Project number is optional; the third row maps without one.
	if result.Entries[2].ProjectNumber != "" {
		t.Fatalf("expected empty project number, got %q", result.Entries[2].ProjectNumber)
	}
}

func TestRun_SkipsEmptyRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.csv")
	content := `ProjectNumber,Start,End
P-100,2026-03-02 09:00,2026-03-02 10:00
,,
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mapper, _ := MapperByName("generic")
	result, err := Run([]string{path}, "csv", mapper)
	if err != nil {
		t.Fatalf("run import: %v", err)
	}
	if result.RowsMapped != 1 || result.RowsSkipped != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
}

func TestRun_RejectsInvertedRange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "entries.csv")
	content := `ProjectNumber,Start,End
P-100,2026-03-02 11:00,2026-03-02 10:00
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mapper, _ := MapperByName("generic")
	if _, err := Run([]string{path}, "csv", mapper); err == nil {
		t.Fatalf("expected error for inverted time range")
	}
}

func TestRun_RejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	mapper, _ := MapperByName("generic")
	if _, err := Run([]string{"entries.txt"}, "", mapper); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestMapperByName_RejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := MapperByName("epm"); err == nil {
		t.Fatalf("expected error for unknown mapper")
	}
}
