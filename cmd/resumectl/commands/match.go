package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
	"alfredoptarigan/resume-optimizer/internal/models"
)

var (
	matchJobPath string
	matchLimit   int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank stored resumes against a job description",
	Args:  cobra.NoArgs,
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchJobPath, "job", "j", "", "job description file, or - for stdin (required)")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 5, "maximum number of resumes")
	_ = matchCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	jobDescription, err := readText(matchJobPath)
	if err != nil {
		return err
	}

	var matches []models.ResumeMatch
	err = withSpinner("Searching resumes...", func() error {
		matches, err = svc.Matcher.Match(cmd.Context(), jobDescription, matchLimit)
		return err
	})
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		ui.Warning("No indexed resumes matched")
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			strconv.FormatUint(m.ResumeID, 10),
			m.FileName,
			fmt.Sprintf("%.3f", m.Score),
			strings.Join(strings.Fields(m.Excerpt), " "),
		})
	}
	ui.Table(cmd.OutOrStdout(), []string{"ID", "File", "Score", "Excerpt"}, rows)
	return nil
}
