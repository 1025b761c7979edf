package commands

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
	"alfredoptarigan/resume-optimizer/internal/models"
)

var (
	insightsATS  bool
	insightsJSON bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights FILE",
	Short: "Analyze a resume against the job market or an ATS",
	Long: `Insights asks the model for job-market insights on a resume, or with --ats
for an applicant tracking system review. FILE may be text or a PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().BoolVar(&insightsATS, "ats", false, "run the ATS review instead")
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "print the raw JSON result")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	resumeText, err := readResume(ctx, args[0])
	if err != nil {
		return err
	}

	var result interface{}
	err = withSpinner("Analyzing resume...", func() error {
		if insightsATS {
			result, err = svc.Insights.ATSInsights(ctx, resumeText)
		} else {
			result, err = svc.Insights.Insights(ctx, resumeText)
		}
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if insightsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch r := result.(type) {
	case *models.ATSInsights:
		printATS(out, r)
	case *models.ResumeInsights:
		printInsights(out, r)
	}
	return nil
}

func printInsights(w io.Writer, r *models.ResumeInsights) {
	ui.Section(w, "ATS Score")
	ui.Table(w, []string{"Metric", "Score"}, [][]string{
		{"ATS score", strconv.Itoa(r.ATSScore)},
	})

	sections := []struct {
		title string
		items []string
	}{
		{"Top Countries", r.TopCountries},
		{"Top Startups", r.TopStartups},
		{"Job Profiles", r.TopJobProfiles},
		{"Key Skills", r.KeySkills},
		{"Skill Gaps", r.SkillGaps},
	}
	for _, s := range sections {
		ui.Section(w, s.title)
		ui.List(w, s.items)
	}
}

func printATS(w io.Writer, r *models.ATSInsights) {
	ui.Section(w, "ATS Review")
	ui.Table(w, []string{"Metric", "Score"}, [][]string{
		{"Overall", strconv.Itoa(r.OverallScore)},
		{"Keyword match", strconv.Itoa(r.KeywordMatch)},
		{"Format", strconv.Itoa(r.FormatScore)},
		{"Readability", strconv.Itoa(r.ReadabilityScore)},
	})

	ui.Section(w, "Improvement Suggestions")
	ui.List(w, r.ImprovementSuggestions)
	ui.Section(w, "Missing Keywords")
	ui.List(w, r.MissingKeywords)
}
