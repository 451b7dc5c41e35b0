package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// BatchManager analyzes several transaction files with bounded concurrency
type BatchManager struct {
	analyzer *Analyzer
}

// BatchResult represents the result of a single analysis in batch
type BatchResult struct {
	File     string
	Status   BatchStatus
	RunID    string
	Health   float64
	Degraded bool
	Error    string
	Duration time.Duration
}

// BatchStatus represents the status of batch analysis item
type BatchStatus int

const (
	BatchPending BatchStatus = iota
	BatchRunning
	BatchCompleted
	BatchFailed
)

// String returns string representation of BatchStatus
func (bs BatchStatus) String() string {
	switch bs {
	case BatchPending:
		return "⏳ Pending"
	case BatchRunning:
		return "🔄 Running"
	case BatchCompleted:
		return "✅ Completed"
	case BatchFailed:
		return "❌ Failed"
	default:
		return "❓ Unknown"
	}
}

func NewBatchManager(an *Analyzer) *BatchManager {
	return &BatchManager{analyzer: an}
}

// RunBatch analyzes every file with the same user and preferences. Results
// keep the order of files.
func (bm *BatchManager) RunBatch(ctx context.Context, files []string, base UserSelections, concurrent int) ([]BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files provided for batch analysis")
	}
	if concurrent <= 0 || concurrent > 10 {
		concurrent = 3
	}

	results := make([]BatchResult, len(files))
	for i, f := range files {
		results[i] = BatchResult{File: f, Status: BatchPending}
	}

	semaphore := make(chan struct{}, concurrent)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			bm.processSingle(ctx, base, &results[idx])
		}(i)
	}
	wg.Wait()

	return results, nil
}

func (bm *BatchManager) processSingle(ctx context.Context, base UserSelections, res *BatchResult) {
	res.Status = BatchRunning
	start := time.Now()

	sel := base
	sel.File = res.File
	sel.SavePath = ""
	outcome, err := bm.analyzer.RunAnalysis(ctx, sel)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = BatchFailed
		res.Error = err.Error()
		return
	}
	res.Status = BatchCompleted
	res.RunID = outcome.RunID
	res.Health = outcome.Result.Report.HealthScore
	res.Degraded = len(outcome.Result.Report.Errors) > 0
}

// PrintBatchSummary writes one line per file and the totals.
func PrintBatchSummary(w io.Writer, results []BatchResult) {
	completed, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case BatchCompleted:
			completed++
			line := fmt.Sprintf("%s  %s  health %.1f  run %s", r.Status, r.File, r.Health, r.RunID)
			if r.Degraded {
				line += "  (degraded)"
			}
			fmt.Fprintln(w, line)
		case BatchFailed:
			failed++
			fmt.Fprintf(w, "%s  %s  %s\n", r.Status, r.File, errorStyle.Render(r.Error))
		default:
			fmt.Fprintf(w, "%s  %s\n", r.Status, r.File)
		}
	}
	fmt.Fprintf(w, "\n📊 %d completed, %d failed\n", completed, failed)
}
