package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/agents"
	"github.com/dyike/FinSage/internal/models"
)

// StageEvent records how one stage of a run ended.
type StageEvent struct {
	Stage    string        `json:"stage"`
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

type eventLogKey struct{}

type eventLog struct {
	mu     sync.Mutex
	events []StageEvent
}

func (l *eventLog) add(ev StageEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) snapshot() []StageEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]StageEvent, len(l.events))
	copy(out, l.events)
	return out
}

func withEventLog(ctx context.Context) (context.Context, *eventLog) {
	l := &eventLog{}
	return context.WithValue(ctx, eventLogKey{}, l), l
}

func recordEvent(ctx context.Context, ev StageEvent) {
	if l, ok := ctx.Value(eventLogKey{}).(*eventLog); ok {
		l.add(ev)
	}
}

// runStage executes one stage against the state. A returned error or a panic
// restores the state the stage received and appends a StageError entry; the
// pipeline always continues.
func runStage(ctx context.Context, stage agents.Stage, state *models.AnalysisState, log zerolog.Logger) {
	name := stage.Name()
	label := consts.StageLabel(name)
	state.CurrentStage = name
	before := *state
	start := time.Now()

	log.Info().Str("stage", name).Str("user_id", state.UserID).Msg("stage started")

	err := safeProcess(ctx, stage, state)
	elapsed := time.Since(start)

	if err != nil {
		*state = before
		state.CurrentStage = name
		stageErr := &agents.StageError{Stage: label, Cause: err}
		state.AddError(stageErr.Error())
		log.Error().Err(err).Str("stage", name).Str("user_id", state.UserID).Dur("duration", elapsed).Msg("stage failed")
		recordEvent(ctx, StageEvent{Stage: name, Status: consts.State_Failed, Message: stageErr.Error(), Duration: elapsed})
		return
	}

	status, msg := consts.State_Completed, ""
	if marker := errorMarker(name, state); marker != "" {
		status, msg = consts.State_Degraded, marker
	}
	log.Info().Str("stage", name).Str("user_id", state.UserID).Str("status", status).Dur("duration", elapsed).Msg("stage finished")
	recordEvent(ctx, StageEvent{Stage: name, Status: status, Message: msg, Duration: elapsed})
}

func safeProcess(ctx context.Context, stage agents.Stage, state *models.AnalysisState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return stage.Process(ctx, state)
}

// errorMarker returns the data error a stage left in its output block.
func errorMarker(name string, state *models.AnalysisState) string {
	switch name {
	case consts.Analyst:
		if state.FinancialAnalysis != nil {
			return state.FinancialAnalysis.Error
		}
	case consts.Optimizer:
		if state.BudgetRecommendation != nil {
			return state.BudgetRecommendation.Error
		}
	case consts.RiskAssessor:
		if state.RiskAssessment != nil {
			return state.RiskAssessment.Error
		}
	case consts.Coach:
		if state.SavingsStrategy != nil {
			return state.SavingsStrategy.Error
		}
	case consts.Monitor:
		if state.MonitoringAlerts != nil {
			return state.MonitoringAlerts.Error
		}
	}
	return ""
}

func stageLambda(stage agents.Stage, log zerolog.Logger) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, state *models.AnalysisState) (*models.AnalysisState, error) {
		runStage(ctx, stage, state, log)
		return state, nil
	})
}

// NewAnalysisOrchestrator wires the stages into a linear graph from START to
// END in the order given.
func NewAnalysisOrchestrator(ctx context.Context, stages []agents.Stage, log zerolog.Logger) (compose.Runnable[*models.AnalysisState, *models.AnalysisState], error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("no stages to orchestrate")
	}
	g := compose.NewGraph[*models.AnalysisState, *models.AnalysisState]()

	prev := compose.START
	for _, s := range stages {
		name := s.Name()
		if err := g.AddLambdaNode(name, stageLambda(s, log), compose.WithNodeName(name)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
		if err := g.AddEdge(prev, name); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", prev, name, err)
		}
		prev = name
	}
	if err := g.AddEdge(prev, compose.END); err != nil {
		return nil, fmt.Errorf("add edge %s -> end: %w", prev, err)
	}

	return g.Compile(ctx, compose.WithGraphName(consts.GraphName))
}
