// internal/notify/email.go

// Package notify sends the poster confirmation email after a posting is
// created. Delivery is best-effort; a send failure never fails the create.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Sender delivers posting notifications.
type Sender interface {
	SendPostingConfirmation(ctx context.Context, to, jobTitle string) error
}

// SESSender implements Sender on AWS SES.
type SESSender struct {
	client *ses.Client
	from   string
}

func NewSESSender(ctx context.Context, region, from string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESSender{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (s *SESSender) SendPostingConfirmation(ctx context.Context, to, jobTitle string) error {
	subject := "Your job posting is live"
	body := fmt.Sprintf(
		"Your posting %q has been published. Tradespeople in your area can now find it and purchase your contact details to get in touch.",
		jobTitle,
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
