package jobs

import (
	"context"

	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/internal/pipeline"
)

// PipelineJob runs the full collect and enrich pipeline on a schedule.
// New entries are appended to the existing corpus.
type PipelineJob struct {
	pipeline *pipeline.Pipeline
	schedule string
}

// NewPipelineJob creates a pipeline job with the given cron schedule
func NewPipelineJob(p *pipeline.Pipeline, schedule string) *PipelineJob {
	return &PipelineJob{
		pipeline: p,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "news-pipeline"
}

// Schedule returns the cron schedule expression
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline in incremental mode
func (j *PipelineJob) Run(ctx context.Context) error {
	return j.pipeline.Run(ctx, corpus.ModeNew)
}
