package consts

const (
	// Stage labels used in error entries and logs
	Agent_Analyst      = "Analyst"
	Agent_Optimizer    = "Optimizer"
	Agent_RiskAssessor = "Risk Assessor"
	Agent_Coach        = "Coach"
	Agent_Monitor      = "Monitor"
	Agent_Compiler     = "Compiler"
)

var stageLabels = map[string]string{
	Analyst:      Agent_Analyst,
	Optimizer:    Agent_Optimizer,
	RiskAssessor: Agent_RiskAssessor,
	Coach:        Agent_Coach,
	Monitor:      Agent_Monitor,
	Compiler:     Agent_Compiler,
}

// StageLabel returns the human readable label for a node name.
func StageLabel(node string) string {
	if label, ok := stageLabels[node]; ok {
		return label
	}
	return node
}

const (
	State_Pending   = "pending"
	State_Running   = "running"
	State_Completed = "completed"
	State_Degraded  = "degraded"
	State_Failed    = "failed"
)

const GraphName = "FinSage-Analysis"
