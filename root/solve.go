package root

import (
	"github.com/btracey/rootfind/common"
)

// Method is a root finding method that has been initialized with its
// function and starting points
type Method interface {
	// Status reports whether a stopping criterion has been met
	Status() common.Status
	// Iterate takes one step. loc and val are the point evaluated during
	// the step, which is recorded and passed to the display
	Iterate() (loc, val float64, nFunEvals int, err error)
	// Root returns the root approximation once Status has converged
	Root() float64
}

type bracketer interface {
	Brackets() []Bracket
}

// Solve runs an initialized method until it converges, fails, or a budget
// held by the helper runs out. The helper must have been initialized.
func Solve(h *Helper, m Method, settings *Settings, name string) (*Result, error) {
	var status common.Status
	for {
		// The method is checked first so that convergence on the final
		// allowed iteration is not reported as running out of budget
		status = common.CheckStatus(m, h)
		if status != common.Continue {
			break
		}

		loc, val, nFunEvals, err := m.Iterate()
		if err != nil {
			return nil, h.abort(err)
		}
		h.Iterate(loc, val, nFunEvals)
	}

	if status.Failed() {
		return nil, h.nonConvergence(status)
	}

	r := h.Result(status, m.Root(), settings.Digits)
	if b, ok := m.(bracketer); ok {
		r.Brackets = b.Brackets()
	}
	if settings.Visualizer != nil {
		settings.Visualizer.Visualize(name, r)
	}
	return r, nil
}
