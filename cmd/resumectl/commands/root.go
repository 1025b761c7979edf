package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
	"alfredoptarigan/resume-optimizer/internal/app"
	"alfredoptarigan/resume-optimizer/internal/config"
)

var (
	verbose bool
	noColor bool

	svc *app.App
)

var rootCmd = &cobra.Command{
	Use:   "resumectl",
	Short: "Extract, tailor and review resumes from the command line",
	Long: `resumectl runs the resume optimizer pipeline locally: OCR extraction of
PDF resumes into text, tailoring a resume to a job description, and
job-market or ATS insights for a resume.

Configuration is read from the environment and .env, like the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.Init(noColor)

		cfg := config.Load()
		if verbose {
			cfg.Log.Level = "debug"
		} else {
			cfg.Log.Level = "warn"
		}
		config.SetupLogger(cfg.Log, os.Stderr)
		if err := cfg.Validate(); err != nil {
			return err
		}

		var err error
		svc, err = app.New(cmd.Context(), cfg)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if svc != nil {
		if closeErr := svc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
