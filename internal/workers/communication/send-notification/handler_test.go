// internal/workers/communication/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-workers/internal/common/logger"
)

type fakeEmailSender struct {
	lastInput *ses.SendEmailInput
	err       error
}

func (f *fakeEmailSender) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSMSSender struct {
	lastInput *sns.PublishInput
	err       error
}

func (f *fakeSMSSender) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func createTestConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		FromAddress: "notifications@carbon-platform.io",
		Enabled:     true,
	}
}

func createTestHandler(t *testing.T, config *Config, email *fakeEmailSender, sms *fakeSMSSender) *Handler {
	return NewHandler(config, email, sms, logger.NewTestLogger(t))
}

func createEmailInput() *Input {
	return &Input{
		NotificationType: "evaluation_complete",
		Channel:          "email",
		RecipientID:      "dev-1",
		RecipientType:    "developer",
		RecipientEmail:   "developer@example.com",
		Payload: map[string]interface{}{
			"projectName":     "Thar Desert Solar",
			"confidenceScore": 75,
			"confidenceLevel": "HIGH",
		},
	}
}

func TestHandler_Execute_EmailDelivery(t *testing.T) {
	email := &fakeEmailSender{}
	handler := createTestHandler(t, createTestConfig(), email, &fakeSMSSender{})

	output, err := handler.Execute(context.Background(), createEmailInput())
	require.NoError(t, err)

	assert.Equal(t, "sent", output.Status)
	assert.Equal(t, "email", output.Channel)
	_, err = uuid.Parse(output.NotificationID)
	assert.NoError(t, err)
	assert.NotEmpty(t, output.SentAt)

	require.NotNil(t, email.lastInput)
	assert.Equal(t, "notifications@carbon-platform.io", *email.lastInput.Source)
	assert.Equal(t, []string{"developer@example.com"}, email.lastInput.Destination.ToAddresses)
	assert.Contains(t, *email.lastInput.Message.Subject.Data, "Thar Desert Solar")
	assert.Contains(t, *email.lastInput.Message.Body.Html.Data, "75/100")
}

func TestHandler_Execute_SMSDelivery(t *testing.T) {
	sms := &fakeSMSSender{}
	handler := createTestHandler(t, createTestConfig(), &fakeEmailSender{}, sms)

	output, err := handler.Execute(context.Background(), &Input{
		NotificationType: "mandate_match",
		Channel:          "sms",
		RecipientID:      "buyer-1",
		RecipientType:    "buyer",
		RecipientPhone:   "+49 170 1234567",
		Payload: map[string]interface{}{
			"projectName": "Mekong Delta Wind",
			"technology":  "WIND",
			"country":     "VN",
			"matchScore":  85,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "sent", output.Status)
	require.NotNil(t, sms.lastInput)
	assert.Equal(t, "+49 170 1234567", *sms.lastInput.PhoneNumber)
	assert.Contains(t, *sms.lastInput.Message, "Mekong Delta Wind")
	assert.Contains(t, *sms.lastInput.Message, "85")
}

func TestHandler_Execute_NotificationsDisabled(t *testing.T) {
	config := createTestConfig()
	config.Enabled = false

	email := &fakeEmailSender{}
	handler := createTestHandler(t, config, email, &fakeSMSSender{})

	output, err := handler.Execute(context.Background(), createEmailInput())
	require.NoError(t, err)

	assert.Equal(t, "disabled", output.Status)
	assert.Empty(t, output.SentAt)
	assert.Nil(t, email.lastInput, "nothing should be sent when disabled")
}

func TestHandler_Execute_UnknownNotificationType(t *testing.T) {
	handler := createTestHandler(t, createTestConfig(), &fakeEmailSender{}, &fakeSMSSender{})

	input := createEmailInput()
	input.NotificationType = "weekly_digest"

	output, err := handler.Execute(context.Background(), input)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrUnknownNotification))
}

func TestHandler_Execute_InvalidRecipients(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"bad email", func(i *Input) { i.RecipientEmail = "not-an-email" }},
		{"empty email", func(i *Input) { i.RecipientEmail = "" }},
		{"bad phone", func(i *Input) {
			i.Channel = "sms"
			i.RecipientPhone = "12"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, createTestConfig(), &fakeEmailSender{}, &fakeSMSSender{})

			input := createEmailInput()
			tt.mutate(input)

			output, err := handler.Execute(context.Background(), input)
			assert.Nil(t, output)
			assert.True(t, errors.Is(err, ErrInvalidRecipient))
		})
	}
}

func TestHandler_Execute_UnsupportedChannel(t *testing.T) {
	handler := createTestHandler(t, createTestConfig(), &fakeEmailSender{}, &fakeSMSSender{})

	input := createEmailInput()
	input.Channel = "carrier-pigeon"

	_, err := handler.Execute(context.Background(), input)
	assert.True(t, errors.Is(err, ErrUnsupportedChannel))
}

func TestHandler_Execute_DeliveryFailure(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("ses throttled")}
	handler := createTestHandler(t, createTestConfig(), email, &fakeSMSSender{})

	output, err := handler.Execute(context.Background(), createEmailInput())
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrDeliveryFailed))
}

func TestHandler_ErrorMapping(t *testing.T) {
	handler := &Handler{}

	tests := []struct {
		err     error
		code    string
		retries int32
	}{
		{ErrInvalidRecipient, "INVALID_RECIPIENT", 0},
		{ErrUnknownNotification, "UNKNOWN_NOTIFICATION_TYPE", 0},
		{ErrUnsupportedChannel, "UNSUPPORTED_CHANNEL", 0},
		{ErrDeliveryFailed, "NOTIFICATION_DELIVERY_FAILED", 3},
		{errors.New("mystery"), "UNKNOWN_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, handler.mapErrorToCode(tt.err))
			assert.Equal(t, tt.retries, handler.getRetryCount(tt.err))
		})
	}
}
