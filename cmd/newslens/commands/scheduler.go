package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/newslens/internal/scheduler"
	"github.com/wonny/newslens/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러 데몬을 시작하거나 작업을 즉시 실행합니다.

이 명령어는:
- 스케줄러 데몬 시작 (주기적 파이프라인 실행)
- 등록된 작업 즉시 실행

Example:
  go run ./cmd/newslens scheduler start
  go run ./cmd/newslens scheduler run news-pipeline`,
}

// schedulerStartCmd starts the scheduler daemon
var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 데몬 시작",
	RunE:  runSchedulerStart,
}

// schedulerRunCmd runs a registered job once
var schedulerRunCmd = &cobra.Command{
	Use:   "run [job-name]",
	Short: "등록된 작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler wires the scheduler with all jobs registered.
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	pipelineJob := jobs.NewPipelineJob(a.pipeline, a.cfg.Pipeline.Schedule)
	if err := sched.AddJob(pipelineJob); err != nil {
		return nil, fmt.Errorf("register pipeline job: %w", err)
	}

	return sched, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== NewsLens Scheduler ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler running")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  • %s\n", name)
	}
	fmt.Printf("\nSchedule: %s\n", a.cfg.Pipeline.Schedule)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}

	jobName := args[0]
	PrintInfo(fmt.Sprintf("Running job: %s", jobName))

	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	history, err := sched.GetJobHistory(jobName, 1)
	if err == nil && len(history) > 0 && !history[0].Success {
		return fmt.Errorf("job failed: %s", history[0].Error)
	}

	PrintSuccess(fmt.Sprintf("Job completed: %s", jobName))
	return nil
}
