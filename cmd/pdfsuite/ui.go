package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/dgallion1/pdfsuite/internal/pipeline"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func statusMark(s pipeline.Status) string {
	switch s {
	case pipeline.StatusSuccess:
		return successColor.Sprint("✓")
	case pipeline.StatusWarning:
		return warningColor.Sprint("⚠")
	default:
		return errorColor.Sprint("✗")
	}
}

// printItem writes one result row and its messages.
func (a *app) printItem(it pipeline.Item, written string) {
	fmt.Fprintf(a.out, "%s %s\n", statusMark(it.Status), it.Name)
	for _, m := range it.Messages {
		fmt.Fprintf(a.out, "    %s\n", m.Text)
	}
	if written != "" {
		fmt.Fprintf(a.out, "    wrote %s\n", written)
	}
}

func (a *app) printSummary(res *pipeline.BatchResult) {
	fmt.Fprintf(a.out, "\n%s %d  %s %d  %s %d\n",
		successColor.Sprint("✓"), res.SuccessCount,
		warningColor.Sprint("⚠"), res.WarningCount,
		errorColor.Sprint("✗"), res.ErrorCount)
	fmt.Fprintln(a.out, res.Summary())
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(a.errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(a.errOut)
		}),
	)
}

// writeFile stores data as dir/name and returns the path.
func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
