package application

// Stage names one step of archived artifact generation.
type Stage string

const (
	StageGate     Stage = "checking eligibility"
	StageMinimize Stage = "minimizing manifest"
	StageReduce   Stage = "reducing resource table"
	StageInject   Stage = "injecting store resource"
	StageStub     Stage = "provisioning code stub"
	StageWrite    Stage = "writing artifact"
)

// Stages lists every stage in the order a generate run reaches them. The
// service reports all but StageWrite, which belongs to the caller's writer.
var Stages = []Stage{StageGate, StageMinimize, StageReduce, StageInject, StageStub, StageWrite}

// StageIndex returns the 1-based position of stage in Stages, or 0.
func StageIndex(stage Stage) int {
	for i, s := range Stages {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

// ProgressFunc is told when a stage starts.
type ProgressFunc func(Stage)
