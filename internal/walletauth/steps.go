package walletauth

// Step is one position in the ordered onboarding sequence. The machine is
// intentionally stateless; the orchestrator owns timing and persistence.
type Step string

const (
	StepDetection      Step = "detection"
	StepConnection     Step = "connection"
	StepAuthentication Step = "authentication"
	StepProfile        Step = "profile"
	StepSuccess        Step = "success"
)

// orderedSteps is the fixed flow order. Progress is derived from position.
var orderedSteps = []Step{
	StepDetection,
	StepConnection,
	StepAuthentication,
	StepProfile,
	StepSuccess,
}

// Steps returns the full ordered sequence.
func Steps() []Step {
	out := make([]Step, len(orderedSteps))
	copy(out, orderedSteps)
	return out
}

func indexOf(s Step) int {
	for i, step := range orderedSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// ProgressOf returns the 1-based position of the step as a percentage of the
// whole flow: detection=20 ... success=100. Unknown steps report 0.
func ProgressOf(s Step) int {
	idx := indexOf(s)
	if idx < 0 {
		return 0
	}
	return (idx + 1) * 100 / len(orderedSteps)
}

// Next returns the following step, or ok=false at the end (no wraparound).
func Next(s Step) (Step, bool) {
	idx := indexOf(s)
	if idx < 0 || idx == len(orderedSteps)-1 {
		return "", false
	}
	return orderedSteps[idx+1], true
}

// Previous returns the preceding step, or ok=false at the start.
func Previous(s Step) (Step, bool) {
	idx := indexOf(s)
	if idx <= 0 {
		return "", false
	}
	return orderedSteps[idx-1], true
}
