package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/itchan-dev/newsletter/shared/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StatusCode maps an error kind to the HTTP status returned to the caller.
func StatusCode(err error) int {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindAuth:
		return http.StatusUnauthorized
	case errors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorAndStatusCode writes the status for err. The message of an
// expected failure is echoed to the caller; unexpected failures only ever
// produce a generic body.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		http.Error(w, "Internal server error", status)
		return
	}

	var e *errors.Error
	message := http.StatusText(status)
	if errors.As(err, &e) && e.Message != "" {
		message = e.Message
	}
	http.Error(w, message, status)
}

// DecodeValidate decodes a JSON body into body and runs its validate tags.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return errors.Validation("Body is invalid json")
	}
	if err := validate.Struct(body); err != nil {
		return errors.Validation("Required fields missing")
	}
	return nil
}
