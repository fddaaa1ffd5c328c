// internal/workers/communication/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	commonaws "carbon-workers/internal/common/aws"
	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/common/validation"
)

const TaskType = "send-notification"

var (
	ErrInvalidRecipient    = errors.New("INVALID_RECIPIENT")
	ErrUnknownNotification = errors.New("UNKNOWN_NOTIFICATION_TYPE")
	ErrUnsupportedChannel  = errors.New("UNSUPPORTED_CHANNEL")
	ErrDeliveryFailed      = errors.New("NOTIFICATION_DELIVERY_FAILED")
)

// EmailSender is the slice of the SES client this worker needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS client this worker needs.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	if result := validation.ValidateInput(raw, GetInputSchema()); !result.Valid {
		h.failJob(client, job, "VALIDATION_FAILED",
			fmt.Sprintf("input validation failed: %v", result.GetErrorMessages()), 0)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.mapErrorToCode(err), err.Error(), h.getRetryCount(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := notificationTemplates[input.NotificationType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNotification, input.NotificationType)
	}

	notificationID := uuid.NewString()

	if !h.config.Enabled {
		h.logger.Info("notifications disabled, skipping delivery", map[string]interface{}{
			"notificationId": notificationID,
			"type":           input.NotificationType,
		})
		return &Output{
			NotificationID: notificationID,
			Status:         "disabled",
			Channel:        input.Channel,
		}, nil
	}

	body, err := renderTemplate(tmpl.Body, input.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	switch input.Channel {
	case "email":
		if !validation.ValidateEmail(input.RecipientEmail) {
			return nil, fmt.Errorf("%w: invalid email address", ErrInvalidRecipient)
		}
		subject, err := renderTemplate(tmpl.Subject, input.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		htmlBody, err := renderTemplate(tmpl.HTMLBody, input.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		emailInput := commonaws.BuildEmailInput(h.config.FromAddress, []string{input.RecipientEmail}, subject, htmlBody, body)
		if _, err := h.email.SendEmail(ctx, emailInput); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	case "sms":
		if !validation.ValidatePhone(input.RecipientPhone) {
			return nil, fmt.Errorf("%w: invalid phone number", ErrInvalidRecipient)
		}
		smsInput := commonaws.BuildSMSInput(input.RecipientPhone, body)
		if _, err := h.sms.Publish(ctx, smsInput); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChannel, input.Channel)
	}

	h.logger.Info("notification delivered", map[string]interface{}{
		"notificationId": notificationID,
		"type":           input.NotificationType,
		"channel":        input.Channel,
		"recipientType":  input.RecipientType,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         "sent",
		Channel:        input.Channel,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRecipient):
		return "INVALID_RECIPIENT"
	case errors.Is(err, ErrUnknownNotification):
		return "UNKNOWN_NOTIFICATION_TYPE"
	case errors.Is(err, ErrUnsupportedChannel):
		return "UNSUPPORTED_CHANNEL"
	case errors.Is(err, ErrDeliveryFailed):
		return "NOTIFICATION_DELIVERY_FAILED"
	}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
	if errors.Is(err, ErrDeliveryFailed) {
		return 3
	}
	return 0
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
