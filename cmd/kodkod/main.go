// Command kodkod runs the bundled example problems through the model
// finder and reports outcomes and statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	kodkod "github.com/manyani/kodkod"
	"github.com/manyani/kodkod/examples"
)

var (
	flagVerbose     bool
	flagBitwidth    int
	flagSkolemDepth int
	flagTimeout     time.Duration

	satColor     = color.New(color.FgGreen, color.Bold)
	unsatColor   = color.New(color.FgRed, color.Bold)
	trivialColor = color.New(color.FgYellow, color.Bold)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kodkod",
		Short:         "finite relational model finder",
		Long:          "kodkod translates bounded relational formulas to SAT and reports satisfiability.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log translation progress")
	root.AddCommand(newListCmd(), newRunCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the bundled example problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range examples.Registry() {
				fmt.Fprintln(cmd.OutOrStdout(), p.Name)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [problem...]",
		Short: "solve example problems (all of them by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, err := selectProblems(args)
			if err != nil {
				return err
			}
			for _, p := range problems {
				if err := runProblem(cmd, p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagBitwidth, "bitwidth", 0, "override the integer bitwidth")
	cmd.Flags().IntVar(&flagSkolemDepth, "skolem-depth", 0, "override the skolemization depth (-1 disables)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "SAT solving budget per problem")
	return cmd
}

func selectProblems(names []string) ([]examples.Problem, error) {
	registry := examples.Registry()
	if len(names) == 0 {
		return registry, nil
	}
	byName := make(map[string]examples.Problem, len(registry))
	for _, p := range registry {
		byName[p.Name] = p
	}
	out := make([]examples.Problem, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown problem %q; try `kodkod list`", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func runProblem(cmd *cobra.Command, p examples.Problem) error {
	opts := p.Options
	if flagVerbose {
		log := logrus.New()
		log.SetLevel(logrus.DebugLevel)
		log.SetOutput(cmd.ErrOrStderr())
		opts.SetReporter(kodkod.NewLogReporter(log))
	}
	if cmd.Flags().Changed("bitwidth") {
		opts.SetBitwidth(flagBitwidth)
	}
	if cmd.Flags().Changed("skolem-depth") {
		opts.SetSkolemDepth(flagSkolemDepth)
	}
	if flagTimeout > 0 {
		opts.SetTimeout(flagTimeout)
	}

	sol, err := kodkod.NewSolver(opts).Solve(context.Background(), p.Formula, p.Bounds)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}

	var painted string
	switch sol.Outcome {
	case kodkod.Satisfiable:
		painted = satColor.Sprint(sol.Outcome)
	case kodkod.Unsatisfiable:
		painted = unsatColor.Sprint(sol.Outcome)
	default:
		painted = trivialColor.Sprint(sol.Outcome)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s  %s\n", p.Name, painted, sol.Stats)
	return nil
}
