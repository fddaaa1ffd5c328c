// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	apperrors "carbon-workers/internal/common/errors"
	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// JobHandler is the handler signature shared by all workers.
type JobHandler func(client worker.JobClient, job entities.Job)

// Worker is an open job subscription on the broker.
type Worker struct {
	worker   worker.JobWorker
	taskType string
	logger   logger.Logger
}

// NewWorker opens a job worker for the given task type. A panic inside the
// handler is recovered and the job is failed through the standard error path
// so one bad job cannot take down the whole worker manager.
func (c *Client) NewWorker(taskType string, maxJobsActive int, timeout time.Duration, handler JobHandler, log logger.Logger) *Worker {
	errHandler := apperrors.NewErrorHandler(log)

	jobWorker := c.client.NewJobWorker().
		JobType(taskType).
		Handler(func(jobClient worker.JobClient, job entities.Job) {
			start := time.Now()
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			defer func() {
				metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
				metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
				observability.RecordJobProcessed(context.Background(), taskType)
				observability.RecordJobDuration(context.Background(), taskType, time.Since(start))
				if r := recover(); r != nil {
					errHandler.HandleJobError(context.Background(), jobClient, job,
						fmt.Errorf("handler panic in %s: %v", taskType, r))
				}
			}()
			handler(jobClient, job)
		}).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobsActive,
		"timeout":       timeout.String(),
	})

	return &Worker{
		worker:   jobWorker,
		taskType: taskType,
		logger:   log,
	}
}

// Close drains and stops the job subscription.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
}
