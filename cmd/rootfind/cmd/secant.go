package cmd

import (
	"github.com/spf13/cobra"

	"github.com/btracey/rootfind/callable"
	"github.com/btracey/rootfind/root"
)

type secantOptions struct {
	*Options
	F      string
	Guess0 float64
	Guess1 float64
}

// NewCommandSecant returns the secant command
func NewCommandSecant(parent *Options) *cobra.Command {
	o := &secantOptions{Options: parent}
	cmd := &cobra.Command{
		Use:     "secant",
		Short:   "Find a root with the secant method",
		Long:    `Find a root of f with the secant method started from two guesses.`,
		Example: `  rootfind secant --f "x^2 - 2" --guess0 1 --guess1 2 --tol 1e-6`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd)
		},
	}
	cmd.Flags().StringVar(&o.F, "f", "", "function of one variable")
	cmd.Flags().Float64Var(&o.Guess0, "guess0", 0, "first starting point")
	cmd.Flags().Float64Var(&o.Guess1, "guess1", 0, "second starting point")
	for _, name := range []string{"f", "guess0", "guess1"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (o *secantOptions) Run(cmd *cobra.Command) error {
	f, err := callable.Compile(o.F)
	if err != nil {
		return err
	}
	r, err := root.Secant(f, o.Guess0, o.Guess1, o.Config.Tolerance, o.Settings(cmd))
	return o.finish(cmd, "secant", r, err)
}
