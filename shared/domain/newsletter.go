package domain

// NewsletterIssue lives only for the duration of one publish call.
type NewsletterIssue struct {
	Title    string
	HTMLBody string
	TextBody string
}

// ConfirmedSubscriber is a confirmed row whose stored email may or may not
// still parse.
type ConfirmedSubscriber struct {
	Email string
}
