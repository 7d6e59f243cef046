package main

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfsuite/internal/pipeline"
	"github.com/dgallion1/pdfsuite/internal/report"
	"github.com/dgallion1/pdfsuite/internal/service"
)

func newBatchCmd(a *app) *cobra.Command {
	var outDir string
	var reports []string
	var search service.SearchOptions
	cmd := &cobra.Command{
		Use:   "batch extract|validate|search FILE...",
		Short: "Run one operation over many files and write a bundle and reports",
		Long: `batch runs extract, validate or search over every file. A file that
fails becomes an error row; the rest of the batch still runs. Extraction
and search write a ZIP bundle of artifacts; every batch writes the
requested reports (csv, txt, json, yaml). Interrupting the batch marks
the files not yet started as cancelled.`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{"extract", "validate", "search"},
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := pipeline.ParseOperation(args[0])
			if err != nil {
				return err
			}
			formats := make([]report.Format, 0, len(reports))
			for _, r := range reports {
				f, err := report.ParseFormat(r)
				if err != nil {
					return err
				}
				formats = append(formats, f)
			}
			var opts pipeline.Options
			if op == pipeline.OpSearch {
				opts.Search = search
			}

			uploads, err := a.readUploads(args[1:])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			bar := a.newProgressBar(len(uploads), string(op))
			res, err := a.run(ctx, op, uploads, opts, func(done, total int, item pipeline.Item) {
				_ = bar.Add(1)
			})
			if err != nil {
				return err
			}
			_ = bar.Finish()

			var written []string
			if res.Package != nil {
				path, err := writeFile(outDir, res.Package.Name, res.Package.Data)
				if err != nil {
					return err
				}
				written = append(written, path)
			}
			for _, f := range formats {
				var buf bytes.Buffer
				if err := report.Write(&buf, f, res); err != nil {
					return err
				}
				path, err := writeFile(outDir, report.FileName(op, f), buf.Bytes())
				if err != nil {
					return err
				}
				written = append(written, path)
			}

			if a.asJSON {
				return a.printJSON(res)
			}
			for _, it := range res.Items {
				a.printItem(it, "")
			}
			a.printSummary(res)
			for _, p := range written {
				fmt.Fprintf(a.out, "wrote %s\n", p)
			}
			return nil
		},
	}
	addSearchFlags(cmd, &search)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringSliceVar(&reports, "report", []string{"csv"}, "report formats to write: csv, txt, json, yaml")
	return cmd
}
