package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
	"alfredoptarigan/resume-optimizer/internal/models"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed every stored resume into the similarity index",
	Long: `Index rebuilds the Qdrant entries of every stored resume. It needs
QDRANT_ENABLED=true and is mostly useful with STORE_DRIVER=postgres, where
resumes outlive the process that extracted them.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	indexer := svc.Indexer()
	if indexer == nil {
		return models.ErrIndexDisabled
	}

	bar := ui.NewProgressBar("Indexing resumes")
	summary, err := indexer.Reindex(cmd.Context(), func(done, total int) {
		bar.Describe(fmt.Sprintf("Indexing resumes %d/%d", done, total))
		bar.Set(done * 100 / total)
	})
	if err != nil {
		bar.Abort()
		return err
	}
	if summary.Total > 0 {
		bar.Finish()
	} else {
		bar.Abort()
	}

	ui.Section(cmd.ErrOrStderr(), "Index Summary")
	ui.Table(cmd.ErrOrStderr(), []string{"Resumes", "Indexed", "Failed"}, [][]string{{
		fmt.Sprint(summary.Total),
		fmt.Sprint(summary.Indexed),
		fmt.Sprint(summary.Failed),
	}})

	if summary.Failed > 0 {
		return fmt.Errorf("%d resume(s) failed to index", summary.Failed)
	}
	ui.Success("All resumes indexed")
	return nil
}
