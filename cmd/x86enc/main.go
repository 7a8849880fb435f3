package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/asmcore/x86enc/internal/asm/x86"
	"github.com/asmcore/x86enc/internal/version"
)

func main() {
	doMain(os.Stdout, os.Stderr, os.Args[1:], os.Exit)
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	mode     string
	features string
	noColor  bool
	verbose  bool
}

func (o *globalOptions) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&o.mode, "mode", "m", "64", "processor mode: 16, 32 or 64")
	flags.StringVar(&o.features, "features", "all", "comma-separated CPU features, or \"all\"")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	return flags
}

func (o *globalOptions) parseMode() (x86.Mode, error) {
	return x86.ParseMode(o.mode)
}

func (o *globalOptions) parseFeatures() (x86.Features, error) {
	if o.features == "all" {
		return x86.FeaturesAll, nil
	}
	return x86.ParseFeatures(o.features)
}

// palette holds the colors of the command output.
type palette struct {
	bytes, variant, reloc, asm *color.Color
}

func (o *globalOptions) palette() palette {
	p := palette{
		bytes:   color.New(color.FgCyan, color.Bold),
		variant: color.New(color.FgYellow),
		reloc:   color.New(color.FgMagenta),
		asm:     color.New(color.FgGreen),
	}
	if o.noColor {
		for _, c := range []*color.Color{p.bytes, p.variant, p.reloc, p.asm} {
			c.DisableColor()
		}
	}
	return p
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer, args []string, exit func(code int)) {
	logger := &logrus.Logger{
		Out:       stdErr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "x86enc",
		Short:         "x86 and x86-64 instruction encoder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().AddFlagSet(opts.flagSet())
	root.AddCommand(
		getEncodeCmd(opts, logger),
		getVariantsCmd(opts),
		getMnemonicsCmd(),
		getVersionCmd(),
	)
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		exit(1)
		return
	}
	exit(0)
}

func getVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of x86enc",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersion())
		},
	}
}
