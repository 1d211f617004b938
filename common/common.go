package common

import (
	"time"

	"github.com/btracey/rootfind/write"
)

// DefaultMaximumIterations is the iteration cap applied to the iterative
// (open) methods when no other value is set
const DefaultMaximumIterations = 1000

type Initer interface {
	Init()
}

type Resulter interface {
	Result()
}

// Helper routines for wrapping the function whose root is sought
//
// If the function is an Initer it will be called once at the start of a solve.
// If the function is a Statuser its status is consulted every iteration.
// If the function is a Resulter it is called once at the end of a solve.
// If the function is a DataAdder its values are added to the display.
type FunctionWrapper struct {
	fun        interface{}
	initCalled bool
}

func (o *FunctionWrapper) Init(function interface{}) {
	if o.initCalled {
		return
	}
	o.initCalled = true
	o.fun = function

	initer, ok := function.(Initer)
	if ok {
		initer.Init()
	}
}

func (o *FunctionWrapper) Status() Status {
	statuser, isStatuser := o.fun.(Statuser)
	if isStatuser {
		return statuser.Status()
	}
	return Continue
}

func (o *FunctionWrapper) Result() {
	resulter, ok := o.fun.(Resulter)
	if ok {
		resulter.Result()
	}
}

func (o *FunctionWrapper) AppendWriteData(v []*write.Value) []*write.Value {
	dataWriter, ok := o.fun.(write.DataAdder)
	if ok {
		return dataWriter.AppendWriteData(v)
	}
	return v
}

// CommonSettings is a set of options available to all solvers
type CommonSettings struct {
	MaximumIterations          int           // Sets the maximum number of iterations that can occur
	MaximumFunctionEvaluations int           // Sets the maximum number of function evaluations that can occur
	MaximumRuntime             time.Duration // Sets the maximum runtime that can elapse
	*write.WriteSettings
}

// DefaultCommonSettings returns the default settings for the common structure
func DefaultCommonSettings() *CommonSettings {
	return &CommonSettings{
		MaximumIterations:          DefaultMaximumIterations,
		MaximumFunctionEvaluations: -1, // Defaults to no maximum function evaluations
		MaximumRuntime:             -1, // Defaults to no maximum runtime
		WriteSettings:              write.DefaultWriteSettings(),
	}
}

// CommonResult is a list of results from the common structure
type CommonResult struct {
	Iterations          int           // Total number of iterations taken by the solver
	FunctionEvaluations int           // Total number of function evaluations taken by the solver
	Runtime             time.Duration // Total runtime elapsed during the solve
	Status              Status        // How did the solver end
}

// Common provides routines for controlling the settings provided by common.
type Common struct {
	iter      int
	funEvals  int
	startTime time.Time

	settings *CommonSettings

	*write.Display
	*FunctionWrapper
}

// NewCommon creates a new Common structure, and adds itself to the display
func NewCommon() *Common {
	c := &Common{
		Display:         write.NewDisplay(),
		FunctionWrapper: &FunctionWrapper{},
	}
	c.AddDataAdder(c, c.FunctionWrapper)
	return c
}

// Init initializes all of the values in common at the start of the solve.
// Every DataAdder must be registered before Init is called.
func (c *Common) Init(settings *CommonSettings, function interface{}, title string) {
	c.iter = 0
	c.funEvals = 0
	c.startTime = time.Now()

	c.settings = settings

	// The function hooks run before the display gathers its headings
	c.FunctionWrapper.Init(function)
	c.Display.Init(c.settings.WriteSettings, title)
}

// AppendWriteData adds the components of common to the display structure
func (c *Common) AppendWriteData(d []*write.Value) []*write.Value {
	d = append(d, &write.Value{Heading: "Iter", Value: c.iter})
	d = append(d, &write.Value{Heading: "FnEval", Value: c.funEvals})
	return d
}

// Note: These have names that are different because we want solvers
// to specifically implement all of them. If it has the name Status(), then
// a solver will implement by embedding common

// Status checks if any of the budgets controlled by common has run out
// (iterations, function evaluations, runtime)
func (c *Common) Status() Status {
	status := c.FunctionWrapper.Status()
	if status != Continue {
		return status
	}

	if c.settings.MaximumIterations > -1 && c.iter >= c.settings.MaximumIterations {
		return MaximumIterations
	}
	if c.settings.MaximumFunctionEvaluations > -1 && c.funEvals >= c.settings.MaximumFunctionEvaluations {
		return MaximumFunctionEvaluations
	}
	if c.settings.MaximumRuntime > -1 && time.Since(c.startTime) > c.settings.MaximumRuntime {
		return MaximumRuntime
	}
	return Continue
}

// Result returns the results from the common structure
func (c *Common) Result(status Status) *CommonResult {
	c.FunctionWrapper.Result()
	c.Display.Finish()
	r := &CommonResult{
		Iterations:          c.iter,
		FunctionEvaluations: c.funEvals,
		Runtime:             time.Since(c.startTime),
		Status:              status,
	}
	return r
}

// AddFunEvals counts function evaluations that happen outside of an
// iteration, such as evaluating the starting points
func (c *Common) AddFunEvals(n int) {
	c.funEvals += n
}

// Iterate performs an iteration of the common structure, incrementing
// the iteration, appending the number of function evaluations, and
// writing to the writers
func (c *Common) Iterate(nFunEvals int) {
	c.iter++
	c.funEvals += nFunEvals
	c.Display.Iterate()
}

// Iterations returns the number of iterations performed so far
func (c *Common) Iterations() int {
	return c.iter
}
