package handler

import (
	"net/http"

	"github.com/itchan-dev/newsletter/shared/errors"
)

// Subscribe handles a form-encoded sign-up with "name" and "email" fields.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, errors.Validation("Invalid form body"))
		return
	}

	if err := h.subscription.Subscribe(r.Context(), r.PostForm.Get("name"), r.PostForm.Get("email")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w)
}

func (h *Handler) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("subscription_token") {
		h.writeError(w, r, errors.Validation("Missing subscription_token"))
		return
	}

	if err := h.subscription.Confirm(r.Context(), query.Get("subscription_token")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w)
}
