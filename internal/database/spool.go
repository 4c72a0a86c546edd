package database

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"rtsched/internal/logging"
	"rtsched/internal/report"

	"github.com/sirupsen/logrus"
)

type SpoolArtifact struct {
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`

	TaskSet          string `json:"taskset"`
	Checksum         string `json:"checksum"`
	Algorithm        string `json:"algorithm"`
	SchedulerVersion string `json:"scheduler_version"`

	ConfigContent string `json:"config_content,omitempty"`

	Report *report.Report `json:"report"`
}

func DefaultSpoolDir() string {
	if v := strings.TrimSpace(os.Getenv("RTSCHED_SPOOL_DIR")); v != "" {
		return v
	}
	return "spool"
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// WriteSpoolArtifact writes a gzip-compressed JSON artifact to disk atomically.
// It returns the final file path.
func WriteSpoolArtifact(dir string, artifact *SpoolArtifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("spool artifact is nil")
	}
	if dir == "" {
		dir = DefaultSpoolDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	checksum := artifact.Checksum
	if checksum == "" {
		checksum = "nocsum"
	}
	taskSet := unsafeNameChars.ReplaceAllString(artifact.TaskSet, "_")
	if taskSet == "" {
		taskSet = "unnamed"
	}
	name := fmt.Sprintf(
		"schedule_%s_%s_%s.json.gz",
		taskSet,
		artifact.CreatedAt.UTC().Format("20060102T150405Z"),
		checksum,
	)
	finalPath := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(artifact); err != nil {
		_ = gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	ok = true
	return finalPath, nil
}

// ReadSpoolArtifact loads an artifact written by WriteSpoolArtifact.
func ReadSpoolArtifact(path string) (*SpoolArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open spool artifact %s: %w", path, err)
	}
	defer gz.Close()

	var artifact SpoolArtifact
	if err := json.NewDecoder(gz).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("failed to decode spool artifact %s: %w", path, err)
	}
	return &artifact, nil
}

// BuildSpoolArtifact constructs a spool artifact from an in-memory run.
func BuildSpoolArtifact(run *ScheduleRun) *SpoolArtifact {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &SpoolArtifact{
		Version:          1,
		CreatedAt:        createdAt,
		TaskSet:          run.TaskSet,
		Checksum:         run.Checksum,
		Algorithm:        run.Algorithm,
		SchedulerVersion: run.SchedulerVersion,
		ConfigContent:    run.ConfigContent,
		Report:           run.Report,
	}
}

// Export writes the run through writer and falls back to a spool artifact
// when there is no writer or the write fails. It returns the spool path, which
// is empty when the write succeeded.
func Export(ctx context.Context, writer ScheduleWriter, run *ScheduleRun, spoolDir string) (string, error) {
	logger := logging.GetLogger()

	if writer != nil {
		err := writer.WriteSchedule(ctx, run)
		if err == nil {
			return "", nil
		}
		logger.WithError(err).Warn("Failed to write schedule to database, spooling to disk")
	}

	path, err := WriteSpoolArtifact(spoolDir, BuildSpoolArtifact(run))
	if err != nil {
		return "", fmt.Errorf("failed to write spool artifact: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"path":      path,
		"taskset":   run.TaskSet,
		"algorithm": run.Algorithm,
	}).Info("Schedule spooled to disk")
	return path, nil
}
