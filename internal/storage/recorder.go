package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dyike/FinSage/internal/graph"
	"github.com/dyike/FinSage/internal/models"
	"github.com/dyike/FinSage/internal/storage/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

// RunRecorder persists analysis runs and reads them back as reports.
type RunRecorder struct {
	store *sqlite.Store
	newID func() string
}

func NewRunRecorder(store *sqlite.Store) (*RunRecorder, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	return &RunRecorder{store: store, newID: uuid.NewString}, nil
}

// Record stores the report and its stage events and returns the new run id.
// A report with errors is stored as degraded.
func (r *RunRecorder) Record(ctx context.Context, res *graph.RunResult) (string, error) {
	if res == nil || res.Report == nil {
		return "", errors.New("run result has no report")
	}
	report := res.Report

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	fp, err := report.Fingerprint()
	if err != nil {
		return "", fmt.Errorf("fingerprint report: %w", err)
	}
	sum := sha256.Sum256(fp)

	status := sqlite.StatusDone
	if len(report.Errors) > 0 {
		status = sqlite.StatusDegraded
	}

	run := sqlite.RunRecord{
		ID:          r.newID(),
		UserID:      report.UserID,
		HealthScore: report.HealthScore,
		Status:      status,
		Fingerprint: hex.EncodeToString(sum[:]),
		ReportJSON:  string(body),
	}
	events := make([]sqlite.StageEventRecord, 0, len(res.Events))
	for i, ev := range res.Events {
		events = append(events, sqlite.StageEventRecord{
			Stage:   ev.Stage,
			Status:  ev.Status,
			Message: ev.Message,
			Seq:     i + 1,
		})
	}

	if err := r.store.SaveRun(ctx, run, events); err != nil {
		return "", err
	}
	return run.ID, nil
}

// StoredRun is a persisted run with its decoded report.
type StoredRun struct {
	sqlite.RunWithMeta
	Report *models.Report
	Events []sqlite.StageEventRecord
}

func (r *RunRecorder) Load(ctx context.Context, runID string) (*StoredRun, error) {
	rec, err := r.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(rec.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", runID, err)
	}
	events, err := r.store.ListStageEvents(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &StoredRun{RunWithMeta: *rec, Report: &report, Events: events}, nil
}

func (r *RunRecorder) History(ctx context.Context, userID string, limit int) ([]sqlite.RunWithMeta, error) {
	return r.store.ListRuns(ctx, userID, limit)
}

// Delete removes a run and its stage events.
func (r *RunRecorder) Delete(ctx context.Context, runID string) error {
	ok, err := r.store.DeleteRun(ctx, runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
