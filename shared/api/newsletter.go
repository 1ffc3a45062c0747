package api

// Request DTOs

// PublishNewsletterRequest fields are pointers so that a missing field can
// be told apart from an empty one. Only missing fields fail validation.
type PublishNewsletterRequest struct {
	Title   *string            `json:"title" validate:"required"`
	Content *NewsletterContent `json:"content" validate:"required"`
}

type NewsletterContent struct {
	HTML *string `json:"html" validate:"required"`
	Text *string `json:"text" validate:"required"`
}
