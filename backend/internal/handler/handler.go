package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/itchan-dev/newsletter/backend/internal/service"
	"github.com/itchan-dev/newsletter/shared/errors"
	"github.com/itchan-dev/newsletter/shared/utils"
)

const (
	maxBodySize = 1 << 20

	// Every authentication failure gets this challenge and the same body so
	// callers cannot tell an unknown user from a wrong password.
	authChallenge = `Basic realm="publish"`
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	subscription service.SubscriptionService
	newsletter   service.NewsletterService
	health       Pinger
	log          *slog.Logger
}

func New(subscription service.SubscriptionService, newsletter service.NewsletterService, health Pinger, log *slog.Logger) *Handler {
	return &Handler{
		subscription: subscription,
		newsletter:   newsletter,
		health:       health,
		log:          log,
	}
}

// writeError logs failures the caller cannot fix and maps err to a response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errors.KindOf(err)
	switch kind {
	case errors.KindAuth:
		h.log.Info("authentication failed", "path", r.URL.Path, "error", err)
		w.Header().Set("WWW-Authenticate", authChallenge)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	case errors.KindUnexpected:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	default:
		h.log.Debug("request rejected", "kind", kind.String(), "method", r.Method, "path", r.URL.Path)
	}
	utils.WriteErrorAndStatusCode(w, err)
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}
