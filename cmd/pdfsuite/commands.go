package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/pipeline"
	"github.com/dgallion1/pdfsuite/internal/service"
	"github.com/dgallion1/pdfsuite/internal/workspace"
)

// readUploads loads paths and applies the configured upload limits.
func (a *app) readUploads(paths []string) ([]workspace.Upload, error) {
	uploads := make([]workspace.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, document.SystemError("read", "cannot read "+p, err)
		}
		uploads = append(uploads, workspace.Upload{Name: filepath.Base(p), Data: data})
	}
	if err := a.limits().Check(uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

func (a *app) run(ctx context.Context, op pipeline.Operation, uploads []workspace.Upload, opts pipeline.Options, progress pipeline.ProgressFunc) (*pipeline.BatchResult, error) {
	inputs := make([]pipeline.Input, len(uploads))
	for i, u := range uploads {
		inputs[i] = pipeline.Input{Name: u.Name, Data: u.Data}
	}
	runner := pipeline.NewRunner(a.adapter, a.validator(), a.cfg.BatchConcurrency, a.log)
	runner.OnItem = progress
	return runner.Run(ctx, op, inputs, opts)
}

// runEach applies op to every file and writes one artifact per file.
func (a *app) runEach(ctx context.Context, op pipeline.Operation, paths []string, opts pipeline.Options, outDir string) error {
	uploads, err := a.readUploads(paths)
	if err != nil {
		return err
	}
	res, err := a.run(ctx, op, uploads, opts, nil)
	if err != nil {
		return err
	}

	written := make([]string, len(res.Items))
	for i, it := range res.Items {
		if it.Status == pipeline.StatusError || len(it.Artifact) == 0 {
			continue
		}
		if written[i], err = writeFile(outDir, it.ArtifactName, it.Artifact); err != nil {
			return err
		}
	}

	if a.asJSON {
		if err := a.printJSON(res.Items); err != nil {
			return err
		}
	} else {
		for i, it := range res.Items {
			a.printItem(it, written[i])
		}
	}
	if res.ErrorCount > 0 {
		return fmt.Errorf("%d of %d item(s) failed", res.ErrorCount, len(res.Items))
	}
	return nil
}

func newExtractCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Keep the first page and every page with a question marker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEach(cmd.Context(), pipeline.OpExtraction, args, pipeline.Options{}, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Report gaps in question numbering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEach(cmd.Context(), pipeline.OpValidation, args, pipeline.Options{}, "")
		},
	}
}

func addSearchFlags(cmd *cobra.Command, opts *service.SearchOptions) {
	cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "regular expression to match page text against")
	cmd.Flags().BoolVar(&opts.CaseSensitive, "case-sensitive", false, "match case")
	cmd.Flags().BoolVar(&opts.KeepFirstPage, "keep-first-page", false, "always keep the first page")
}

func newSearchCmd(a *app) *cobra.Command {
	var outDir string
	var opts service.SearchOptions
	cmd := &cobra.Command{
		Use:   "search FILE... --pattern REGEX",
		Short: "Keep the pages whose text matches a regular expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEach(cmd.Context(), pipeline.OpSearch, args, pipeline.Options{Search: opts}, outDir)
		},
	}
	addSearchFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// removal is one "--remove N:RANGES" flag: file position N (1-based) and a
// page range expression.
type removal struct {
	file  int
	pages string
}

func parseRemoval(s string, files int) (removal, error) {
	pos, pages, ok := strings.Cut(s, ":")
	if !ok {
		return removal{}, document.ValidationErrorf("merge", "--remove %q must look like FILE:PAGES, e.g. 1:2,4-5", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(pos))
	if err != nil || n < 1 || n > files {
		return removal{}, document.ValidationErrorf("merge", "--remove %q names file %s; expected 1 to %d", s, pos, files)
	}
	return removal{file: n, pages: pages}, nil
}

func newMergeCmd(a *app) *cobra.Command {
	var outDir string
	var removals []string
	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "Merge the retained pages of several documents into one PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			uploads, err := a.readUploads(args)
			if err != nil {
				return err
			}

			ws := workspace.New()
			docs := make([]*document.Document, len(uploads))
			for i, u := range uploads {
				if docs[i], err = a.adapter.Parse(ctx, u.Name, u.Data); err != nil {
					return err
				}
			}
			ws.Add(docs...)

			for _, s := range removals {
				rm, err := parseRemoval(s, len(docs))
				if err != nil {
					return err
				}
				doc := docs[rm.file-1]
				indexes, err := workspace.ParsePageRanges(rm.pages, doc.PageCount())
				if err != nil {
					return err
				}
				if err := ws.RemovePages(doc.ID, indexes); err != nil {
					return err
				}
			}

			res, err := service.NewMerger(a.adapter).Merge(ctx, ws.Documents())
			if err != nil {
				return err
			}
			path, err := writeFile(outDir, res.OutputName, res.Artifact)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(map[string]any{"output": path, "page_count": res.PageCount})
			}
			fmt.Fprintf(a.out, "%s merged %d page(s) from %d file(s) into %s\n",
				statusMark(pipeline.StatusSuccess), res.PageCount, len(docs), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringArrayVar(&removals, "remove", nil, "drop pages before merging, as FILE:PAGES (e.g. 1:2,4-5); repeatable")
	return cmd
}
