package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	c "lautenbacher.net/potileds/config"
)

type failingWriter struct{}

func (fw *failingWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func TestTUIMode(t *testing.T) {
	if err := Init(c.LogConfig{Level: "DEBUG", Format: "text"}, true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Initial log")

	var tuiPane bytes.Buffer
	if err := SetOutput(&tuiPane); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}

	if !strings.Contains(tuiPane.String(), "Initial log") {
		t.Errorf("Expected initial log to be flushed to TUI, but it wasn't. Got: %s", tuiPane.String())
	}

	slog.Info("Live log")

	if !strings.Contains(tuiPane.String(), "Live log") {
		t.Errorf("Expected live log to be written to TUI, but it wasn't. Got: %s", tuiPane.String())
	}

	BufferOutput()

	slog.Info("Buffered log")

	if strings.Contains(tuiPane.String(), "Buffered log") {
		t.Errorf("Expected log to be buffered, but it was written to TUI. Got: %s", tuiPane.String())
	}

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestHWMode_FileLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	if err := Init(c.LogConfig{Level: "INFO", Format: "json", File: logFile}, false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("HW log", "key", "value")
	slog.Debug("Not logged at INFO")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if !strings.Contains(string(content), `"msg":"HW log"`) || !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("Expected log to be written to file in JSON format, but it wasn't. Got: %s", string(content))
	}
	if strings.Contains(string(content), "Not logged") {
		t.Errorf("Expected debug message to be filtered. Got: %s", string(content))
	}
}

func TestInit_BadLogFile(t *testing.T) {
	err := Init(c.LogConfig{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")}, false)
	if err == nil {
		t.Fatal("Expected an error for an unopenable log file")
	}
}

func TestStderrFallback(t *testing.T) {
	if err := Init(c.LogConfig{Level: "DEBUG", Format: "text"}, true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Shutdown log")

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	var wg sync.WaitGroup
	wg.Add(1)
	var capturedOutput string
	go func() {
		defer wg.Done()
		buf := make([]byte, 1024)
		n, _ := r.Read(buf)
		capturedOutput = string(buf[:n])
	}()

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	w.Close()
	wg.Wait()
	os.Stderr = oldStderr

	if !strings.Contains(capturedOutput, "Shutdown log") {
		t.Errorf("Expected shutdown log to be written to stderr, but it wasn't. Got: %s", capturedOutput)
	}
}

func TestWriteErrorPropagation(t *testing.T) {
	w := &teeWriter{target: &failingWriter{}}
	if _, err := w.Write([]byte("line\n")); err == nil {
		t.Error("Expected the target's write error to be returned")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
