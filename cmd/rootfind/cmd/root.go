package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/config"
	"github.com/btracey/rootfind/root"
	"github.com/btracey/rootfind/write"
)

const rootLongDescription = `rootfind finds a root of a real function of one variable.

Functions are written as expressions in a single variable, for example
"x^3 - 2*x - 5" or "exp(t) - 2". Supported functions are sin, cos, tan,
exp, log (ln), sqrt, abs, sinh, cosh, tanh and atan, and pi and e are
constants.

Methods:
  bisect  - bisection of a sign changing bracket
  newton  - Newton-Raphson from one starting point
  secant  - secant method from two starting points`

// Options holds the flags shared by every solver command
type Options struct {
	ConfigFile string
	Verbose    bool
	Trace      string
	Digits     int
	MaxIter    int
	Tol        float64

	Config *config.Config
	Log    *logrus.Logger
}

// Execute runs the rootfind command line
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the rootfind command tree
func NewRootCommand() *cobra.Command {
	o := &Options{Log: logrus.New()}

	cmd := &cobra.Command{
		Use:           "rootfind",
		Short:         "Find roots of real functions of one variable",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.Complete(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.ConfigFile, "config", "", "solver config file (.toml, .yaml or .yml)")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&o.Trace, "trace", config.TraceNone, "iteration trace: none, table or csv")
	flags.IntVar(&o.Digits, "digits", root.DefaultDigits, "decimal places of the reported root, negative keeps all")
	flags.IntVar(&o.MaxIter, "max-iter", common.DefaultMaximumIterations, "iteration cap for newton and secant")
	flags.Float64Var(&o.Tol, "tol", config.DefaultTolerance, "convergence tolerance")

	cmd.AddCommand(
		NewCommandBisect(o),
		NewCommandNewton(o),
		NewCommandSecant(o),
		NewCommandVersion(),
	)
	return cmd
}

// Complete sets up logging and merges the config file with the flags.
// Flags given on the command line take precedence over the file.
func (o *Options) Complete(cmd *cobra.Command) error {
	o.Log.SetOutput(cmd.ErrOrStderr())
	o.Log.SetLevel(logrus.InfoLevel)
	if o.Verbose {
		o.Log.SetLevel(logrus.DebugLevel)
	}

	if o.ConfigFile == "" {
		o.Config = config.Default()
	} else {
		cfg, err := config.Load(o.ConfigFile)
		if err != nil {
			return err
		}
		o.Config = cfg
		o.Log.WithField("file", o.ConfigFile).Debug("loaded config")
	}

	flags := cmd.Flags()
	if flags.Changed("tol") {
		o.Config.Tolerance = o.Tol
	}
	if flags.Changed("digits") {
		d := o.Digits
		o.Config.Digits = &d
	}
	if flags.Changed("max-iter") {
		o.Config.MaxIterations = o.MaxIter
	}
	if flags.Changed("trace") {
		o.Config.Trace.Format = o.Trace
	}

	switch o.Config.Trace.Format {
	case config.TraceNone, config.TraceTable, config.TraceCSV:
	default:
		return fmt.Errorf("unknown trace format %q", o.Config.Trace.Format)
	}
	return nil
}

// Settings returns the solver settings for one command, with the trace
// and the report written to the command output
func (o *Options) Settings(cmd *cobra.Command) *root.Settings {
	s := o.Config.Settings()
	out := cmd.OutOrStdout()
	switch o.Config.Trace.Format {
	case config.TraceTable:
		s.DisplayWriters = []write.Writer{{Writer: out, T: write.Displayer}}
	case config.TraceCSV:
		s.DisplayWriters = []write.Writer{{Writer: out, T: write.Logger}}
	}
	s.Visualizer = newReport(out)
	return s
}

// finish logs and prints the outcome of a solve
func (o *Options) finish(cmd *cobra.Command, method string, r *root.Result, err error) error {
	if err != nil {
		o.Log.WithError(err).WithField("method", method).Debug("solve failed")
		return fmt.Errorf("%s: %w", method, err)
	}
	o.Log.WithFields(logrus.Fields{
		"method":      method,
		"status":      r.Status,
		"iterations":  r.Iterations,
		"evaluations": r.FunctionEvaluations,
		"runtime":     r.Runtime,
	}).Debug("solve finished")
	newReport(cmd.OutOrStdout()).Summary(r)
	return nil
}
