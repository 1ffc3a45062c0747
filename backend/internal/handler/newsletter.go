package handler

import (
	"net/http"

	"github.com/itchan-dev/newsletter/shared/api"
	"github.com/itchan-dev/newsletter/shared/domain"
	"github.com/itchan-dev/newsletter/shared/utils"
)

func (h *Handler) PublishNewsletter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var body api.PublishNewsletterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	issue := domain.NewsletterIssue{
		Title:    *body.Title,
		HTMLBody: *body.Content.HTML,
		TextBody: *body.Content.Text,
	}
	if err := h.newsletter.Publish(r.Context(), issue, basicAuthCredentials(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w)
}

// basicAuthCredentials returns nil when the Authorization header is absent
// or is not a well-formed Basic header.
func basicAuthCredentials(r *http.Request) *domain.Credentials {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil
	}
	return &domain.Credentials{Username: username, Password: password}
}
