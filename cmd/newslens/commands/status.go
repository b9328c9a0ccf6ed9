package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/newslens/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "코퍼스 상태 조회",
	Long: `로컬 아티팩트와 미러의 상태를 출력합니다.

Example:
  go run ./cmd/newslens status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== NewsLens Status ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	PrintSeparator()

	if !a.store.CorpusExists() {
		PrintWarning("Corpus artifact not found, run collect first")
	} else {
		records, err := a.store.ReadCorpus()
		if err != nil {
			return fmt.Errorf("read corpus: %w", err)
		}
		PrintKeyValue("Corpus rows", fmt.Sprintf("%d", len(records)), 14)
	}

	enriched, err := a.store.ReadEnriched()
	if err != nil {
		PrintKeyValue("Enriched rows", "0 (not built)", 14)
	} else {
		withMetrics := 0
		var maxDate string
		for i := range enriched {
			if enriched[i].WeeklyReturn != nil {
				withMetrics++
			}
			d := enriched[i].EndDate.Format(contracts.DateLayout)
			if d > maxDate {
				maxDate = d
			}
		}
		PrintKeyValue("Enriched rows", fmt.Sprintf("%d", len(enriched)), 14)
		PrintKeyValue("With metrics", fmt.Sprintf("%d", withMetrics), 14)
		if maxDate != "" {
			PrintKeyValue("Max end date", maxDate, 14)
		}
	}

	if a.mirror != nil {
		status, err := a.mirror.GetStatus(context.Background())
		if err != nil {
			PrintWarning(fmt.Sprintf("Mirror status unavailable: %v", err))
		} else {
			PrintKeyValue("Mirror rows", fmt.Sprintf("%d", status.Rows), 14)
			PrintKeyValue("Coverage", fmt.Sprintf("%.1f%%", status.MetricCoverage*100), 14)
		}
	}

	PrintSeparator()
	return nil
}
