package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingLoggerWrites(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	expected := "narratives-" + getWeekKey(time.Now()) + ".log"
	if rl.CurrentFile() != expected {
		t.Errorf("Expected current file %s, got %s", expected, rl.CurrentFile())
	}

	if _, err := rl.Write([]byte("first line\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, expected))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "first line") {
		t.Errorf("Log file does not contain the written line: %s", content)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 64)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	week := getWeekKey(time.Now())
	for _, name := range []string{
		"narratives-" + week + ".log",
		"narratives-" + week + "_01.log",
		"narratives-" + week + "_02.log",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	old := filepath.Join(dir, "narratives-2020-W01.log")
	unrelated := filepath.Join(dir, "other.log")
	for _, path := range []string{old, unrelated} {
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("Failed to age %s: %v", path, err)
		}
	}

	deleted, err := rl.CleanupOldLogs()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be removed", old)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("Expected unrelated file to survive: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, rl.CurrentFile())); err != nil {
		t.Errorf("Expected current file to survive: %v", err)
	}
}

func TestGetWeekKey(t *testing.T) {
	testTime := time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC)
	if got := getWeekKey(testTime); got != "2025-W41" {
		t.Errorf("Expected week key 2025-W41, got %s", got)
	}
}
