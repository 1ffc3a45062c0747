package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/itchan-dev/newsletter/shared/domain"
)

const WelcomeSubject = "Welcome!"

var markdown = goldmark.New()

// Welcome renders the confirmation message sent right after sign-up. Both
// bodies carry the same link.
func Welcome(to domain.SubscriberEmail, confirmationLink string) (Message, error) {
	source := fmt.Sprintf("Welcome to our newsletter!\n\nClick [here](%s) to confirm your subscription.\n", confirmationLink)

	var html bytes.Buffer
	if err := markdown.Convert([]byte(source), &html); err != nil {
		return Message{}, fmt.Errorf("failed to render welcome message: %w", err)
	}

	return Message{
		To:       to,
		Subject:  WelcomeSubject,
		HTMLBody: html.String(),
		TextBody: fmt.Sprintf("Welcome to our newsletter!\nVisit %s to confirm your subscription.", confirmationLink),
	}, nil
}
