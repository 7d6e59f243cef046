package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes one batch job at a time.
type Worker struct {
	runner *Runner
	log    *slog.Logger
}

func NewWorker(runner *Runner, log *slog.Logger) *Worker {
	return &Worker{runner: runner, log: log}
}

// Process runs the job's batch and records the result on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "operation", string(job.Operation))

	inputs, opts := job.Inputs()
	job.SetStatus(JobRunning, "processing")

	// Each job gets its own Runner copy so progress lands on this job.
	r := *w.runner
	r.log = log
	r.OnItem = func(done, total int, item Item) {
		job.SetItemsProcessed(done)
		if item.Status == StatusError && len(item.Messages) > 0 {
			job.AddError(item.Name + ": " + item.Messages[0].Text)
		}
	}

	result, err := r.Run(ctx, job.Operation, inputs, opts)
	if err != nil {
		log.Error("batch failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(JobFailed, "processing")
		return
	}
	job.SetResult(result)
	job.SetStatus(JobCompleted, "done")
}
