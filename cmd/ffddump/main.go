package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	root "github.com/corwinn/libwind-ffd"
	"github.com/corwinn/libwind-ffd/ffdstream"
)

func main() {
	var (
		debug   bool
		noColor bool
		timing  bool
		useZlib bool
		useGzip bool
	)

	rootCmd := &cobra.Command{
		Use:           "ffddump",
		Short:         "Compile and apply Format Description schemas",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print node counts")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&timing, "timing", false, "Show compile/decode timing breakdown")
	rootCmd.PersistentFlags().BoolVar(&useZlib, "zlib", false, "Treat the input file as zlib-compressed")
	rootCmd.PersistentFlags().BoolVar(&useGzip, "gzip", false, "Treat the input file as gzip-compressed")

	compileCmd := &cobra.Command{
		Use:   "compile <description-file>",
		Short: "Parse and resolve a Format Description, printing a schema summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0], debug, timing, !noColor)
		},
	}

	decodeCmd := &cobra.Command{
		Use:   "decode <description-file> <input-file>",
		Short: "Compile a Format Description and apply it to an input file, dumping the instance tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0], args[1], debug, timing, !noColor, useZlib, useGzip)
		},
	}

	rootCmd.AddCommand(compileCmd, decodeCmd)

	if err := rootCmd.Execute(); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(noColor))
		os.Exit(1)
	}
}

func runCompile(descPath string, debug, timing, useColor bool) error {
	desc, err := os.ReadFile(descPath)
	if err != nil {
		return &CLIError{Message: fmt.Sprintf("reading %s: %v", descPath, err)}
	}

	start := time.Now()
	schema, err := root.Compile(desc)
	parseElapsed := time.Since(start)
	if err != nil {
		return &CLIError{
			Message: err.Error(),
			Hint:    "check the Format Description for a missing `format` block or an unresolved type reference",
		}
	}

	nodes := schema.Nodes()
	fmt.Printf("%s: %d schema nodes, format %q\n",
		Colorize("OK", ColorGreen, useColor), len(nodes), schema.Format.Name)
	if debug {
		kindCounts := map[string]int{}
		for _, n := range nodes {
			kindCounts[n.Kind.String()]++
		}
		for _, k := range []string{"type", "const", "enum", "struct", "field", "format"} {
			if c := kindCounts[k]; c > 0 {
				fmt.Printf("  %-8s %d\n", k, c)
			}
		}
	}
	if timing {
		fmt.Printf("  parse: %s\n", parseElapsed)
	}
	return nil
}

func runDecode(descPath, inputPath string, debug, timing, useColor, useZlib, useGzip bool) error {
	desc, err := os.ReadFile(descPath)
	if err != nil {
		return &CLIError{Message: fmt.Sprintf("reading %s: %v", descPath, err)}
	}
	if useZlib && useGzip {
		return &CLIError{Message: "--zlib and --gzip are mutually exclusive"}
	}

	parseStart := time.Now()
	schema, err := root.Compile(desc)
	parseElapsed := time.Since(parseStart)
	if err != nil {
		return &CLIError{Message: err.Error()}
	}

	open := func() (*os.File, error) { return os.Open(inputPath) }
	var stream ffdstream.Stream
	switch {
	case useZlib:
		stream, err = ffdstream.Zlib(func() (io.Reader, error) { return open() })
	case useGzip:
		stream, err = ffdstream.Gzip(func() (io.Reader, error) { return open() })
	default:
		f, ferr := open()
		if ferr != nil {
			err = ferr
		} else {
			stream = ffdstream.FromReadSeeker(f)
		}
	}
	if err != nil {
		return &CLIError{Message: fmt.Sprintf("opening %s: %v", inputPath, err)}
	}

	decodeStart := time.Now()
	inst, err := root.Decode(schema, stream)
	decodeElapsed := time.Since(decodeStart)
	if err != nil {
		return &CLIError{
			Message: err.Error(),
			Hint:    "the input file likely doesn't match the Format Description, or is truncated",
		}
	}

	FormatInstance(os.Stdout, inst, useColor)
	if debug {
		fmt.Printf("%s %d instance nodes\n", Colorize("debug:", ColorGray, useColor), inst.NodeCount())
	}
	if timing {
		fmt.Printf("  parse:  %s\n", parseElapsed)
		fmt.Printf("  decode: %s\n", decodeElapsed)
	}
	return nil
}
