package common

type Statuser interface {
	Status() Status
}

// CheckStatus checks the status of a variadic number of statusers and
// returns the first one that is not Continue
func CheckStatus(cs ...Statuser) Status {
	for _, val := range cs {
		c := val.Status()
		if c != Continue {
			return c
		}
	}
	return Continue
}

// NewStatus is used to get a unique value for Status to avoid any accidental
// collisions. NewStatus is not thread-safe as it is intended to only be used
// during initialization. Pass success as true to register a status that
// signals convergence, and false to register one that signals failure.
func NewStatus(str string, success bool) Status {
	var s Status
	if success {
		lastSuccess++
		s = lastSuccess
	} else {
		lastFailure--
		s = lastFailure
	}
	statusStrings[s] = str
	return s
}

var statusStrings map[Status]string

func init() {
	statusStrings = make(map[Status]string)
	statusStrings[Continue] = "Continue"
	statusStrings[ResidualTol] = "ResidualTol"
	statusStrings[StepTol] = "StepTol"
	statusStrings[BracketTol] = "BracketTol"
	statusStrings[ExactRoot] = "ExactRoot"

	statusStrings[UserFunctionStop] = "StoppedByUserFunction"
	statusStrings[MaximumIterations] = "MaximumIterations"
	statusStrings[MaximumFunctionEvaluations] = "MaximumFunctionEvaluations"
	statusStrings[MaximumRuntime] = "MaximumRuntimeElapsed"
	statusStrings[MethodError] = "MethodError"
}

// Status is a type for expressing if the solver has finished or not.
// Zero signifies no convergence or error so the solver should continue.
// Positive values indicate successful convergence,
// negative values express failure in some way.
//
// If a custom status value is desired, NewStatus should be called. NewStatus
// is not thread-safe as it is intended to only be used during initialization
type Status int

func (s Status) String() string {
	str, ok := statusStrings[s]
	if !ok {
		return "UnregisteredStatus"
	}
	return str
}

// Converged reports whether the status is a successful termination
func (s Status) Converged() bool { return s > 0 }

// Failed reports whether the status is an unsuccessful termination
func (s Status) Failed() bool { return s < 0 }

const (
	Continue    Status = iota
	ResidualTol        // |f(x)| fell below the tolerance
	StepTol            // distance between successive iterates fell below the tolerance
	BracketTol         // bracket width fell below the tolerance
	ExactRoot          // f(x) evaluated to exactly zero
)

const (
	_                       = iota
	UserFunctionStop Status = -1 * iota
	MaximumIterations
	MaximumFunctionEvaluations
	MaximumRuntime
	MethodError // the method stopped on an error such as a non-finite value
)

var (
	lastSuccess Status = 256
	lastFailure Status = -256
)
