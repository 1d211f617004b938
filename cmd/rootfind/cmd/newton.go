package cmd

import (
	"github.com/spf13/cobra"

	"github.com/btracey/rootfind/callable"
	"github.com/btracey/rootfind/root"
	"github.com/btracey/rootfind/symbolic"
)

type newtonOptions struct {
	*Options
	F       string
	Guess   float64
	Numeric bool
}

// NewCommandNewton returns the Newton-Raphson command
func NewCommandNewton(parent *Options) *cobra.Command {
	o := &newtonOptions{Options: parent}
	cmd := &cobra.Command{
		Use:   "newton",
		Short: "Find a root with Newton-Raphson",
		Long: `Find a root of f with Newton's method starting from a guess.

The derivative is found symbolically. With --numeric f is treated as an
opaque function and its derivative is a central difference.`,
		Example: `  rootfind newton --f "x^4 - 4*x^2 + 4" --guess 1.5 --tol 1e-12`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd)
		},
	}
	cmd.Flags().StringVar(&o.F, "f", "", "function of one variable")
	cmd.Flags().Float64Var(&o.Guess, "guess", 0, "starting point")
	cmd.Flags().BoolVar(&o.Numeric, "numeric", false, "use a finite difference derivative")
	for _, name := range []string{"f", "guess"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (o *newtonOptions) Run(cmd *cobra.Command) error {
	var f interface{}
	if o.Numeric {
		e, err := callable.Compile(o.F)
		if err != nil {
			return err
		}
		f = e
	} else {
		e, err := symbolic.Parse(o.F)
		if err != nil {
			return err
		}
		o.Log.WithField("derivative", symbolic.Diff(e, variableOf(e)).String()).Debug("differentiated")
		f = e
	}
	r, err := root.NewtonRaphson(f, o.Guess, o.Config.Tolerance, o.Settings(cmd))
	return o.finish(cmd, "newton", r, err)
}

// variableOf returns the first free variable of e, or "x" for a constant
func variableOf(e symbolic.Expr) string {
	if vars := symbolic.FreeSymbols(e); len(vars) > 0 {
		return vars[0]
	}
	return "x"
}
