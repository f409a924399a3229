// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/metrics"
	"phoneplan-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler processes one job and reports the outcome to the broker itself.
// The returned error is the failure that was reported, if any.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Worker is an open job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType using the worker's configured
// concurrency and job timeout.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

// Stop closes the worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// Instrument adapts handler to the Zeebe handler signature and records job
// metrics around every call. A panicking handler is logged and counted as a
// failure; the broker retries the job once its timeout elapses.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
				log.Error("handler panicked", map[string]interface{}{
					"jobKey": job.Key,
					"panic":  fmt.Sprint(r),
				})
			}
			record(taskType, err, time.Since(start), obs)
		}()

		err = handler.Handle(client, job)
	}
}

func record(taskType string, err error, elapsed time.Duration, obs *observability.Observability) {
	status := observability.StatusCompleted
	if err != nil {
		status = observability.StatusFailed
		metrics.WorkerJobsFailed.WithLabelValues(taskType, string(apperrors.CodeOf(err))).Inc()
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	}
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, taskType, status)
	obs.RecordJobDuration(ctx, taskType, elapsed, status)
}

// CompleteJob completes job with output serialized as the job's variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("serialize job output: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}
	return nil
}
