package testutil

import "github.com/specialistvlad/streamgrid/internal/graph"

// Engine ids used across scheduler tests.
const (
	AICore   = "AIcoreEngine"
	AICPU    = "AIcpuEngine"
	HCCL     = "hccl"
	GeLocal  = "DNN_VM_GE_LOCAL"
	NoTask   = "DNN_V100"
	DSA      = "DSAEngine"
	Sched    = "default"
	Isolated = "isolated_sched"
)

// Engines returns a fresh set of engine configurations covering every
// placement rule.
func Engines() map[string]*graph.EngineConfig {
	return map[string]*graph.EngineConfig{
		AICore:  {ID: AICore, SchedulerID: Sched, Class: graph.ClassVector},
		AICPU:   {ID: AICPU, SchedulerID: Sched, Class: graph.ClassHostCPU},
		HCCL:    {ID: HCCL, SchedulerID: Sched, Class: graph.ClassCollective, Independent: true},
		GeLocal: {ID: GeLocal, SchedulerID: Sched, Class: graph.ClassOther, Attach: true},
		NoTask:  {ID: NoTask, SchedulerID: Sched, Class: graph.ClassOther, SkipAssignStream: true},
		DSA:     {ID: DSA, SchedulerID: Sched, Class: graph.ClassDSA},
	}
}
