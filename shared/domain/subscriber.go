package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/itchan-dev/newsletter/shared/errors"
)

type (
	SubscriberId      = uuid.UUID
	SubscriptionToken = string
)

// SubscriberStatus values are stored verbatim in subscriptions.status.
type SubscriberStatus string

const (
	StatusPendingConfirmation SubscriberStatus = "PENDING_CONFIRMATION"
	StatusConfirmed           SubscriberStatus = "CONFIRMED"
)

const maxNameGraphemes = 256

const forbiddenNameChars = `/()"<>\[]{}`

var validate = validator.New(validator.WithRequiredStructEnabled())

// SubscriberName is a name that passed ParseSubscriberName.
type SubscriberName struct {
	value string
}

func (n SubscriberName) String() string { return n.value }

// SubscriberEmail is an address that passed ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

func (e SubscriberEmail) String() string { return e.value }

// ParseSubscriberName rejects blank names, names longer than 256 grapheme
// clusters and names containing any of / ( ) " < > \ [ ] { }.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	isEmpty := strings.TrimSpace(raw) == ""
	isTooLong := uniseg.GraphemeClusterCount(raw) > maxNameGraphemes
	hasForbidden := strings.ContainsAny(raw, forbiddenNameChars)

	if isEmpty || isTooLong || hasForbidden {
		return SubscriberName{}, errors.Validation(fmt.Sprintf("%s is not a valid subscriber name", raw))
	}
	return SubscriberName{value: raw}, nil
}

func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if err := validate.Var(raw, "required,email"); err != nil {
		return SubscriberEmail{}, errors.Validation(fmt.Sprintf("%s is not a valid subscriber email", raw))
	}
	return SubscriberEmail{value: raw}, nil
}

type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// ParseNewSubscriber validates both fields, reporting the name first.
func ParseNewSubscriber(name, email string) (NewSubscriber, error) {
	n, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	e, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: n, Email: e}, nil
}

type Subscriber struct {
	Id           SubscriberId
	Email        string
	Name         string
	SubscribedAt time.Time
	Status       SubscriberStatus
}

type SubscriptionTokenData struct {
	Token        SubscriptionToken
	SubscriberId SubscriberId
}
