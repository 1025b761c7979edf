package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
	"alfredoptarigan/resume-optimizer/internal/models"
)

var extractOutputDir string

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract text from PDF resumes with OCR",
	Long: `Extract rasterizes every page of each PDF, recognizes its text and stores
the result as a resume. Each successful extraction costs credits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutputDir, "output", "o", "", "directory to write <name>.txt files into")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if extractOutputDir != "" {
		if err := os.MkdirAll(extractOutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var rows [][]string
	failed := 0
	for _, path := range args {
		result, err := extractFile(ctx, path)
		if err != nil {
			failed++
			ui.Error("%s: %v", path, err)
			// later files would fail the same way
			if errors.Is(err, models.ErrInsufficientCredits) || ctx.Err() != nil {
				break
			}
			continue
		}

		ui.Success("Extracted %s as resume #%d", filepath.Base(path), result.resume.ID)
		if result.skipped > 0 {
			ui.Warning("%d page(s) skipped", result.skipped)
		}

		if extractOutputDir != "" {
			if err := writeText(extractOutputDir, path, result.resume.Text); err != nil {
				return err
			}
		} else if len(args) == 1 {
			fmt.Fprint(cmd.OutOrStdout(), result.resume.Text)
		}

		rows = append(rows, []string{
			strconv.FormatUint(result.resume.ID, 10),
			filepath.Base(path),
			strconv.Itoa(result.pages),
			strconv.Itoa(len([]rune(result.resume.Text))),
			strconv.Itoa(result.balance),
		})
	}

	if len(rows) > 1 {
		ui.Section(cmd.ErrOrStderr(), "Extraction Summary")
		ui.Table(cmd.ErrOrStderr(), []string{"ID", "File", "Pages", "Characters", "Credits"}, rows)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
	}
	return nil
}

func writeText(dir, source, text string) error {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	target := filepath.Join(dir, base+".txt")
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	ui.Info("Text saved to %s", target)
	return nil
}
