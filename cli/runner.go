package cli

import (
	"github.com/jessevdk/go-flags"
	"io"
	"os"
)

// Run parses args and executes the selected command.
func Run(args []string) error {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, out, errOut io.Writer) error {
	options := NewOptions(out, errOut)
	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.ParseArgs(args)
	return err
}
