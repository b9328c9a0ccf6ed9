package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/newslens/internal/corpus"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [all|last|new]",
	Short: "전체 파이프라인 실행",
	Long: `수집과 결합을 순서대로 실행합니다.

이 명령어는:
- collect: RSS 수집 + LLM 추출 + 코퍼스 저장
- enrich: 시장 수익률 계산 + 결합 아티팩트 저장

Example:
  go run ./cmd/newslens run all
  go run ./cmd/newslens run new`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== NewsLens Pipeline ===")

	modeArg := "all"
	if len(args) > 0 {
		modeArg = args[0]
	}
	mode, err := corpus.ParseMode(modeArg)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()

	if err := a.pipeline.Run(context.Background(), mode); err != nil {
		PrintError(fmt.Sprintf("Pipeline failed: %v", err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Pipeline completed in %.2fs", time.Since(start).Seconds()))
	return nil
}
