/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command r600lower runs the R600 lowering passes over a graph described
// in a YAML file and prints the result.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/cloudwego/r600isel"
	"github.com/cloudwego/r600isel/internal/dagfile"
	"github.com/cloudwego/r600isel/internal/target"
)

type flags struct {
	generation string
	stackWidth int
	debug      bool
	raw        bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "r600lower",
		Short:        "Lower selection graphs for R600 family GPUs",
		SilenceUsage: true,
	}
	root.AddCommand(newLowerCommand())
	return root
}

func newLowerCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "lower FILE.yaml",
		Short: "Legalize a graph and finalize its selected instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(cmd, args[0], &f)
		},
	}
	cmd.Flags().StringVarP(&f.generation, "generation", "g", "r700", "hardware generation (r600, r700, evergreen, cayman)")
	cmd.Flags().IntVarP(&f.stackWidth, "stack-width", "w", 1, "sub-registers per indirect stack slot (1, 2 or 4)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "log every rewrite to stderr")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "dump the lowered roots as Go values")
	return cmd
}

func (f *flags) options() ([]r600isel.Option, error) {
	gen, ok := target.ParseGeneration(strings.ToLower(f.generation))
	if !ok {
		return nil, fmt.Errorf("unknown generation %q", f.generation)
	}
	switch f.stackWidth {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("stack width must be 1, 2 or 4, got %d", f.stackWidth)
	}
	ret := []r600isel.Option{
		r600isel.WithGeneration(gen),
		r600isel.WithStackWidth(f.stackWidth),
	}
	if f.debug {
		ret = append(ret, r600isel.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	return ret, nil
}

func runLower(cmd *cobra.Command, path string, f *flags) error {
	options, err := f.options()
	if err != nil {
		return err
	}

	/* the file may override the stack width */
	tg := r600isel.NewTarget(options...)
	p, err := dagfile.Load(path, f.stackWidth)
	if err != nil {
		return err
	}

	roots, err := tg.LowerDAG(p.DAG, p.Function, p.Roots)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.raw {
		spew.Fdump(out, roots)
	}
	fmt.Fprintln(out, p.DAG.Dump(roots...))

	/* selected instructions, if the file has any */
	if p.Machine == nil {
		return nil
	}
	if err = tg.FinalizeFunction(p.Machine); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, p.Machine.String())
	return nil
}
