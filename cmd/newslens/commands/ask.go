package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/newslens/internal/contracts"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "코퍼스 기반 질의응답",
	Long: `결합된 코퍼스를 근거로 질문에 답합니다.

이 명령어는:
- 결합 아티팩트 로드
- 임베딩 유사도로 근거 청크 검색
- LLM으로 근거 기반 답변 생성

Example:
  go run ./cmd/newslens ask "What happened to NVDA recently?"
  go run ./cmd/newslens ask --show-sources "Which stocks beat the market?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var askShowSources bool

func init() {
	rootCmd.AddCommand(askCmd)

	// Flags
	askCmd.Flags().BoolVar(&askShowSources, "show-sources", false, "검색된 근거 청크 출력")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.ReadEnriched()
	if err != nil {
		PrintError("Enriched corpus is not available, run the pipeline first")
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("enriched corpus is empty, run the pipeline first")
	}

	start := time.Now()

	answer, err := a.qaEngine.Ask(context.Background(), records, question)
	if err != nil {
		PrintError(fmt.Sprintf("Failed to answer: %v", err))
		return err
	}

	PrintDoubleSeparator()
	if answer.Ticker != "" && !answer.MinDate.IsZero() {
		fmt.Printf("Long term news for %s in the last %d weeks (%s..%s)\n",
			answer.Ticker,
			answer.Weeks,
			answer.MinDate.Format(contracts.DateLayout),
			answer.MaxDate.Format(contracts.DateLayout),
		)
		PrintSeparator()
	}
	fmt.Println(answer.Text)
	PrintDoubleSeparator()

	if askShowSources {
		fmt.Printf("\nSources (%d):\n", len(answer.Sources))
		for i, src := range answer.Sources {
			fmt.Printf("\n%d. %s / %s (similarity %.3f)\n",
				i+1,
				src.Record.Ticker,
				src.Record.EndDate.Format(contracts.DateLayout),
				src.Similarity,
			)
			excerpt := src.Chunk
			if len(excerpt) > 300 {
				excerpt = excerpt[:300] + "..."
			}
			fmt.Println(excerpt)
		}
	}

	fmt.Printf("\nAnswered in %.2fs\n", time.Since(start).Seconds())
	return nil
}
