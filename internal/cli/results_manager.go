package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dyike/FinSage/internal/display"
	"github.com/dyike/FinSage/internal/graph"
	"github.com/dyike/FinSage/internal/storage"
	"github.com/dyike/FinSage/internal/storage/sqlite"
)

// ResultsManager reads and exports recorded analysis runs
type ResultsManager struct {
	app *App
}

func NewResultsManager(a *App) *ResultsManager {
	return &ResultsManager{app: a}
}

// ListResults lists recorded runs newest first
func (rm *ResultsManager) ListResults(ctx context.Context, userID string, limit int) ([]sqlite.RunWithMeta, error) {
	rec, err := rm.app.Recorder()
	if err != nil {
		return nil, err
	}
	return rec.History(ctx, userID, limit)
}

// ShowResult renders one stored run with its stage outcomes
func (rm *ResultsManager) ShowResult(ctx context.Context, w io.Writer, runID string, asJSON bool) error {
	run, err := rm.load(ctx, runID)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run.Report)
	}

	fmt.Fprintf(w, "Run %s  (%s, %s)\n\n", run.ID, run.Status, run.CreatedAt)
	if err := display.NewResultsDisplay(rm.app.Config().CurrencySymbol).Print(w, run.Report); err != nil {
		return err
	}
	fmt.Fprintln(w)
	_, err = io.WriteString(w, display.RenderStages(stageEvents(run.Events)))
	return err
}

// ExportResult writes the stored report as JSON into dir and returns the path
func (rm *ResultsManager) ExportResult(ctx context.Context, runID, dir string) (string, error) {
	run, err := rm.load(ctx, runID)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = rm.app.Config().ResultsDir
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", run.UserID, run.ID))
	if err := display.SaveReport(run.Report, path); err != nil {
		return "", err
	}
	return path, nil
}

// DeleteResult removes a stored run
func (rm *ResultsManager) DeleteResult(ctx context.Context, runID string) error {
	rec, err := rm.app.Recorder()
	if err != nil {
		return err
	}
	return rec.Delete(ctx, runID)
}

// CleanupResults removes exported report files older than maxAge
func (rm *ResultsManager) CleanupResults(maxAge time.Duration) (int, error) {
	dir := rm.app.Config().ResultsDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read results dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (rm *ResultsManager) load(ctx context.Context, runID string) (*storage.StoredRun, error) {
	rec, err := rm.app.Recorder()
	if err != nil {
		return nil, err
	}
	return rec.Load(ctx, runID)
}

func stageEvents(records []sqlite.StageEventRecord) []graph.StageEvent {
	events := make([]graph.StageEvent, 0, len(records))
	for _, r := range records {
		events = append(events, graph.StageEvent{Stage: r.Stage, Status: r.Status, Message: r.Message})
	}
	return events
}
