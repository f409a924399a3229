// internal/common/aws/notifier.go
package aws

import (
	"context"
	"fmt"

	"phoneplan-workers/internal/common/config"
	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// SubscriptionConfirmation is what a new subscriber is told.
type SubscriptionConfirmation struct {
	SubscriptionID int64
	PhoneNumber    string
	UserName       string
	Email          string
	PlanName       string
}

// Delivery is the outcome of one notification channel.
type Delivery struct {
	Channel   string `json:"channel"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
	Reference string `json:"reference"`
	Error     string `json:"error,omitempty"`
}

// Notifier sends subscription confirmations over SNS (SMS) and SES (email).
// A channel with no client or disabled in config is skipped.
type Notifier struct {
	cfg    config.NotificationConfig
	sms    SMSPublisher
	email  EmailSender
	logger logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, sms SMSPublisher, email EmailSender, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		sms:    sms,
		email:  email,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// NewNotifierFromConfig creates AWS clients for the enabled channels.
func NewNotifierFromConfig(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	var (
		sms   SMSPublisher
		email EmailSender
	)
	if cfg.SMS.Enabled {
		c, err := NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SNS client: %w", err)
		}
		sms = c
	}
	if cfg.Email.Enabled {
		c, err := NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES client: %w", err)
		}
		email = c
	}
	return NewNotifier(cfg, sms, email, log), nil
}

// ConfirmSubscription notifies the subscriber on every enabled channel. Failures
// are reported per channel and never abort the other channels.
func (n *Notifier) ConfirmSubscription(ctx context.Context, c SubscriptionConfirmation) []Delivery {
	deliveries := make([]Delivery, 0, 2)

	if n.cfg.SMS.Enabled && n.sms != nil && c.PhoneNumber != "" {
		deliveries = append(deliveries, n.deliver(ChannelSMS, c, func(ref string) (string, error) {
			return n.sendSMS(ctx, c, ref)
		}))
	}
	if n.cfg.Email.Enabled && n.email != nil && c.Email != "" {
		deliveries = append(deliveries, n.deliver(ChannelEmail, c, func(ref string) (string, error) {
			return n.sendEmail(ctx, c, ref)
		}))
	}
	return deliveries
}

func (n *Notifier) deliver(channel string, c SubscriptionConfirmation, send func(ref string) (string, error)) Delivery {
	d := Delivery{Channel: channel, Reference: uuid.NewString()}

	messageID, err := send(d.Reference)
	if err != nil {
		stdErr := apperrors.NewNotificationSendFailedError(channel, err)
		d.Error = stdErr.Error()
		n.logger.Warn("notification failed", map[string]interface{}{
			"channel":        channel,
			"subscriptionId": c.SubscriptionID,
			"reference":      d.Reference,
			"errorCode":      string(stdErr.Code),
			"error":          err.Error(),
		})
		return d
	}

	d.Sent = true
	d.MessageID = messageID
	n.logger.Info("notification sent", map[string]interface{}{
		"channel":        channel,
		"subscriptionId": c.SubscriptionID,
		"messageId":      messageID,
	})
	return d
}

func (n *Notifier) sendSMS(ctx context.Context, c SubscriptionConfirmation, ref string) (string, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(c.PhoneNumber),
		Message:     aws.String(smsText(c, ref)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if n.cfg.SMS.SenderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(n.cfg.SMS.SenderID),
		}
	}

	out, err := n.sms.Publish(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func (n *Notifier) sendEmail(ctx context.Context, c SubscriptionConfirmation, ref string) (string, error) {
	out, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{ToAddresses: []string{c.Email}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String("Your " + c.PlanName + " subscription"), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(emailText(c, ref)), Charset: aws.String("UTF-8")},
			},
		},
		Tags: []sestypes.MessageTag{
			{Name: aws.String("reference"), Value: aws.String(ref)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func smsText(c SubscriptionConfirmation, ref string) string {
	return fmt.Sprintf("Your line %s is now subscribed to %s. Ref %s", c.PhoneNumber, c.PlanName, ref[:8])
}

func emailText(c SubscriptionConfirmation, ref string) string {
	return fmt.Sprintf("Hello %s,\n\nThe phone number %s is now subscribed to the %s plan (subscription #%d).\n\nReference: %s\n",
		c.UserName, c.PhoneNumber, c.PlanName, c.SubscriptionID, ref)
}
