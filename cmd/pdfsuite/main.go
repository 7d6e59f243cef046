// Command pdfsuite extracts question pages, validates question numbering,
// merges documents and runs batches from the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfsuite/internal/config"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/questions"
	"github.com/dgallion1/pdfsuite/internal/workspace"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app is the state shared by every command.
type app struct {
	cfgFile string
	asJSON  bool
	noColor bool

	out    io.Writer
	errOut io.Writer

	cfg     config.Config
	log     *slog.Logger
	adapter parser.Adapter

	// newAdapter builds the document adapter once config is loaded.
	newAdapter func(config.Config) parser.Adapter
}

func defaultAdapter(cfg config.Config) parser.Adapter {
	return parser.NewDispatcher(parser.NewPDF(cfg.PDFFallbackFitz, cfg.ThumbnailDPI, cfg.OptimizeOutput), nil)
}

func (a *app) validator() questions.Validator {
	return questions.Validator{Ceiling: a.cfg.MarkerCeiling}
}

func (a *app) limits() workspace.Limits {
	return workspace.LimitsFromMB(a.cfg.MaxFileMB, a.cfg.MaxBatchMB, a.cfg.MaxBatchFiles)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pdfsuite",
		Short: "Extract, validate, search and merge question documents",
		Long: `pdfsuite works on exam and solution documents. It keeps the pages that
carry "Question N" markers, reports gaps in question numbering, extracts
pages matching a regular expression and merges documents page by page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.noColor {
				color.NoColor = true
			}
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.NewLogger(a.errOut)
			if a.newAdapter == nil {
				a.newAdapter = defaultAdapter
			}
			a.adapter = a.newAdapter(cfg)
			return nil
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newExtractCmd(a),
		newValidateCmd(a),
		newSearchCmd(a),
		newMergeCmd(a),
		newBatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "pdfsuite %s\n", version)
		},
	}
}

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+err.Error())
		os.Exit(1)
	}
}
