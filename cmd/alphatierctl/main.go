// Command alphatierctl is a small, non-networked driver for manually
// exercising the Alphatier core: load a scenario (executors + one
// commit) from a YAML file, submit it, and print the resulting Result or
// rejection. It is not a service — Alphatier carries no transport or
// persistence surface — just a convenient way to poke at the core from a
// shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	alphatier "github.com/sarnowski/alphatier-go"
	"github.com/sarnowski/alphatier-go/commit"
	"github.com/sarnowski/alphatier-go/executor"
	"github.com/sarnowski/alphatier-go/pool"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "alphatierctl",
		Short: "Exercise an Alphatier resource-coordination pool from the command line",
	}
	root.AddCommand(newRunCommand())
	return root
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Register executors and submit one commit from a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}

			a := alphatier.NewPool()

			for _, e := range s.Executors {
				if err := a.RegisterExecutor(e.ID, pool.Resources(e.Resources), executor.RegisterOptions{
					Metadata: e.Metadata,
				}); err != nil {
					return fmt.Errorf("register executor %s: %w", e.ID, err)
				}
			}

			var opts []commit.CommitOption
			if s.Commit.Force {
				opts = append(opts, commit.WithForce(true))
			}

			result, err := a.Commit(s.Commit.toPool(), opts...)
			printResult(cmd, result)
			if err != nil {
				return err
			}
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, result pool.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "accepted: %d\n", len(result.AcceptedActions))
	for _, a := range result.AcceptedActions {
		fmt.Fprintf(out, "  + %s %s\n", a.Type, a.ID)
	}
	for name, actions := range result.RejectedActions {
		fmt.Fprintf(out, "rejected by %s: %d\n", name, len(actions))
		for _, a := range actions {
			fmt.Fprintf(out, "  - %s %s\n", a.Type, a.ID)
		}
	}
}
