package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "시장 수익률 결합",
	Long: `저장된 코퍼스에 시장 수익률 지표를 결합합니다.

이 명령어는:
- 코퍼스 아티팩트 로드
- 가격 이력 조회 후 일간/주간 수익률 계산
- 지표 결합 아티팩트 저장 (스키마 게이트 통과 시)

Example:
  go run ./cmd/newslens enrich`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	fmt.Println("=== NewsLens Enrich ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()

	rows, err := a.pipeline.Enrich(context.Background())
	if err != nil {
		PrintError(fmt.Sprintf("Enrichment failed: %v", err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Enriched %d rows in %.2fs", rows, time.Since(start).Seconds()))
	return nil
}
