// Command jackc is the register-allocating Jack-to-Hack-assembly compiler backend's CLI. It wires
// command-line flags to internal/compile.Options via github.com/spf13/cobra; it does not itself
// call internal/compile.Run, since it has no input classes to pass it.
//
// Building a Jack class's ast.Node tree from source text is out of scope: this package has no
// lexer or parser. Its RunE reports that plainly instead of silently accepting a source path it
// cannot do anything with.
package main

import (
	"fmt"
	"os"

	"jackc/internal/compile"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printFatal(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := compile.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "jackc [source...]",
		Short: "Compile flattened, register-allocated Jack IR to Hack assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(opts.Verbose)
			if len(args) > 0 {
				return errors.Errorf(
					"jackc has no parser: cannot compile source file %q; "+
						"build ast.Node/symtab.Table values and call internal/compile.Run directly",
					args[0])
			}
			logrus.WithFields(logrus.Fields{
				"registers": opts.Registers,
				"threads":   opts.Threads,
			}).Info("jackc: no input classes given, nothing to compile")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Out, "out", "o", opts.Out, "path to write assembly output (default stdout)")
	flags.IntVar(&opts.Registers, "registers", opts.Registers, "override the register allocator's K (0 = default of 8)")
	flags.IntVarP(&opts.Threads, "threads", "t", opts.Threads, "number of subroutines to compile concurrently")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "log at debug level")

	return cmd
}

func configureLogging(verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.InfoLevel)
}

// printFatal renders err as a red "internal compiler error" banner followed by the full
// pkg/errors cause chain.
func printFatal(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "internal compiler error: ")
	fmt.Fprintln(os.Stderr, err)
	if cause := errors.Cause(err); cause != err {
		yellow := color.New(color.FgYellow)
		yellow.Fprintln(os.Stderr, "caused by:", cause)
	}
}
