package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
)

var (
	tailorResumePath string
	tailorJobPath    string
	tailorPDFPath    string
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Rewrite a resume for a job description",
	Long: `Tailor rewrites a resume so it targets the given job description. The
resume may be plain text or a PDF, which is extracted first. Use "-" as the
job path to read the description from standard input.`,
	Args: cobra.NoArgs,
	RunE: runTailor,
}

func init() {
	tailorCmd.Flags().StringVarP(&tailorResumePath, "resume", "r", "", "resume file, text or PDF (required)")
	tailorCmd.Flags().StringVarP(&tailorJobPath, "job", "j", "", "job description file (required)")
	tailorCmd.Flags().StringVar(&tailorPDFPath, "pdf", "", "also export the tailored resume to this PDF path")
	_ = tailorCmd.MarkFlagRequired("resume")
	_ = tailorCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	resumeText, err := readResume(ctx, tailorResumePath)
	if err != nil {
		return err
	}
	jobDescription, err := readText(tailorJobPath)
	if err != nil {
		return err
	}

	var content string
	err = withSpinner("Tailoring resume...", func() error {
		content, err = svc.Tailor.Tailor(ctx, resumeText, jobDescription)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), content)

	if tailorPDFPath == "" {
		return nil
	}

	f, err := os.Create(tailorPDFPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tailorPDFPath, err)
	}
	if err := svc.Exporter.Export(f, content); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	ui.Success("PDF saved to %s", tailorPDFPath)
	return nil
}
