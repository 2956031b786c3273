// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"

	"github.com/mstorsjo/gas-preprocessor/internal/engine"
	"github.com/spf13/cobra"
)

var verbose bool

var command = &cobra.Command{
	Use:  "gaspp [input] [-o output]",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		archName, _ := cmd.PersistentFlags().GetString("arch")
		asType, _ := cmd.PersistentFlags().GetString("as-type")
		output, _ := cmd.PersistentFlags().GetString("output")
		fixUnreq, _ := cmd.PersistentFlags().GetBool("fix-unreq")
		noFixUnreq, _ := cmd.PersistentFlags().GetBool("no-fix-unreq")
		forceThumb, _ := cmd.PersistentFlags().GetBool("force-thumb")

		opts := engine.NewOptionsFromEnv()
		opts.Verbose = verbose
		opts.ForceThumb = forceThumb
		if noFixUnreq {
			opts.FixUnreq = false
		} else if fixUnreq {
			opts.FixUnreq = true
		}

		arch, err := engine.ParseArch(archName)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		opts.Arch = arch

		dialect, err := engine.ParseDialect(asType)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		opts.Dialect = dialect

		in := os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			in = f
		}

		out := os.Stdout
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if err := engine.NewEngine(opts).Run(in, out); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().StringP("output", "o", "", "output file (default stdout)")
	command.PersistentFlags().String("arch", "arm", "target architecture (arm, aarch64, powerpc)")
	command.PersistentFlags().String("as-type", "apple-gas", "target assembler dialect (gas, apple-gas, clang, apple-clang, llvm_gcc, armasm)")
	command.PersistentFlags().Bool("fix-unreq", false, "emit both register-name cases on .unreq")
	command.PersistentFlags().Bool("no-fix-unreq", false, "disable the default -fix-unreq on Darwin hosts")
	command.PersistentFlags().Bool("force-thumb", false, "rewrite instruction shapes the thumb encoder can't represent directly")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, increase verbosity level")
}

// -help is the spec's own spelling of usage help, distinct from pflag's
// double-dash --help/-h; pflag would otherwise parse "-help" as the
// concatenated shorthands -h -e -l -p, so it's handled before Execute.
func main() {
	for _, a := range os.Args[1:] {
		if a == "-help" {
			_ = command.Usage()
			os.Exit(0)
		}
	}
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
