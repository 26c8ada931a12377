// Command procrtd is the embedder entry point of spec.md §6: it
// constructs a Runtime, runs one of the bundled example Programs to
// completion, and maps the returned exit code to the process's own.
// This is the only executable in the module; everything else here is
// library code, the same shape the teacher's own zenq package takes
// relative to its examples/*/main.go demonstrations.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alphadose/procrt"
	"github.com/alphadose/procrt/examples"
	"github.com/alphadose/procrt/internal/glue"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "procrtd",
		Short: "run a bundled Zen runtime example program to completion",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		stackSize  int
		seed       int64
		guardpages bool
	)

	cmd := &cobra.Command{
		Use:       "run <example-name>",
		Short:     "run one of the bundled example programs",
		Args:      cobra.ExactArgs(1),
		ValidArgs: exampleNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			program, ok := examples.All()[name]
			if !ok {
				return fmt.Errorf("procrtd: unknown example %q (want one of %v)", name, exampleNames())
			}
			if guardpages {
				logrus.StandardLogger().Warn("procrtd: --guardpages has no effect; guard pages are enabled only by building with -tags procrt_guardpages")
			}

			rt := procrt.NewRuntimeWithStackSize(uint64(seed), glue.ChanGlue{}, stackSize)
			code, err := rt.Run(program)
			if err != nil && code == 0 {
				code = 1
			}
			os.Exit(code)
			return nil
		},
	}

	cmd.Flags().IntVar(&stackSize, "stack-size", procrt.DefaultStackSize, "usable bytes per proc stack segment")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for scheduling and rendezvous selection")
	cmd.Flags().BoolVar(&guardpages, "guardpages", false, "accepted for compatibility and ignored; guard-page registration is selected by building with -tags procrt_guardpages")

	return cmd
}

func exampleNames() []string {
	names := make([]string, 0, len(examples.All()))
	for name := range examples.All() {
		names = append(names, name)
	}
	return names
}
