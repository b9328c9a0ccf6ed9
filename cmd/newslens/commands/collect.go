package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/internal/feed"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect [all|last|new]",
	Short: "뉴스 수집 및 구조화",
	Long: `RSS 피드를 수집하고 LLM으로 구조화된 레코드를 추출합니다.

이 명령어는:
- RSS 피드에서 뉴스 엔트리 수집
- LLM 추출로 종목별/시장 레코드 생성
- 평탄화된 코퍼스 아티팩트 저장

Modes:
  all   - 전체 엔트리 처리 후 코퍼스 재작성
  last  - 최신 엔트리 1건만 처리 (프롬프트 점검용)
  new   - 기존 코퍼스 최대 날짜 이후 레코드만 추가

Example:
  go run ./cmd/newslens collect all
  go run ./cmd/newslens collect new
  go run ./cmd/newslens collect all --snapshot`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollect,
}

var collectSnapshot bool

func init() {
	rootCmd.AddCommand(collectCmd)

	// Flags
	collectCmd.Flags().BoolVar(&collectSnapshot, "snapshot", false, "파싱된 피드를 JSON으로 덤프")
}

func runCollect(cmd *cobra.Command, args []string) error {
	fmt.Println("=== NewsLens Collect ===")

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

	ctx := context.Background()
	start := time.Now()

	if collectSnapshot {
		if err := writeFeedSnapshot(ctx, a); err != nil {
			return err
		}
	}

	result, err := a.pipeline.Collect(ctx, mode)
	if err != nil {
		PrintError(fmt.Sprintf("Collection failed: %v", err))
		return err
	}

	PrintSeparator()
	PrintKeyValue("Mode", string(mode), 10)
	PrintKeyValue("Processed", fmt.Sprintf("%d entries", result.Processed), 10)
	PrintKeyValue("Skipped", fmt.Sprintf("%d entries (no content)", result.Skipped), 10)
	PrintKeyValue("Failed", fmt.Sprintf("%d entries", result.Failed), 10)
	PrintKeyValue("Records", fmt.Sprintf("%d", len(result.Records)), 10)
	PrintSeparator()
	PrintSuccess(fmt.Sprintf("Collection completed in %.2fs", time.Since(start).Seconds()))

	return nil
}

// writeFeedSnapshot fetches the feed once more and dumps it as JSON.
func writeFeedSnapshot(ctx context.Context, a *app) error {
	entries, err := a.feedClient.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed for snapshot: %w", err)
	}

	path := filepath.Join(a.cfg.Pipeline.DataDir, fmt.Sprintf("feed_snapshot_%s.json", time.Now().Format("20060102_150405")))
	if err := feed.WriteSnapshot(path, entries); err != nil {
		return err
	}

	PrintInfo(fmt.Sprintf("Feed snapshot written to %s", path))
	return nil
}
