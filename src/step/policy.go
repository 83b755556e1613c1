package step

import "fmt"

// Policy selects which stage failures fail the step.
type Policy int

const (
	// PolicyAgentPhaseFatal fails the step only for configuration and agent registry errors.
	// Detection and webhook failures are logged and the step still succeeds, so a broken
	// webhook looks like success to anything reading the step result.
	PolicyAgentPhaseFatal Policy = iota

	// PolicyStrict also fails the step when detection or the webhook fails.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyAgentPhaseFatal:
		return "agent-phase"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "agent-phase" (or empty) and "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "agent-phase":
		return PolicyAgentPhaseFatal, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q", s)
	}
}
