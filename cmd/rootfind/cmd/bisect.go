package cmd

import (
	"github.com/spf13/cobra"

	"github.com/btracey/rootfind/callable"
	"github.com/btracey/rootfind/root"
)

type bisectOptions struct {
	*Options
	F     string
	Lower float64
	Upper float64
}

// NewCommandBisect returns the bisection command
func NewCommandBisect(parent *Options) *cobra.Command {
	o := &bisectOptions{Options: parent}
	cmd := &cobra.Command{
		Use:   "bisect",
		Short: "Find a root inside a sign changing bracket",
		Long: `Find a root of f in [lower, upper] by repeatedly halving the bracket.

f(lower) and f(upper) must have opposite signs, or one of them must be zero.`,
		Example: `  rootfind bisect --f "sin(x)" --lower 1 --upper 6 --tol 1e-7`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd)
		},
	}
	cmd.Flags().StringVar(&o.F, "f", "", "function of one variable")
	cmd.Flags().Float64Var(&o.Lower, "lower", 0, "lower end of the bracket")
	cmd.Flags().Float64Var(&o.Upper, "upper", 0, "upper end of the bracket")
	for _, name := range []string{"f", "lower", "upper"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (o *bisectOptions) Run(cmd *cobra.Command) error {
	f, err := callable.Compile(o.F)
	if err != nil {
		return err
	}
	o.Log.WithField("f", f.String()).Debugf("bisecting [%v, %v]", o.Lower, o.Upper)
	r, err := root.Bisect(f, o.Lower, o.Upper, o.Config.Tolerance, o.Settings(cmd))
	return o.finish(cmd, "bisect", r, err)
}
