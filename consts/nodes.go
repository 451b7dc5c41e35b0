package consts

// 流水线节点
const (
	Analyst      = "analyst"
	Optimizer    = "optimizer"
	RiskAssessor = "risk_assessor"
	Coach        = "coach"
	Monitor      = "monitor"
	Compiler     = "compiler"
)

// Stages is the fixed execution order of the analysis graph.
var Stages = []string{Analyst, Optimizer, RiskAssessor, Coach, Monitor, Compiler}
