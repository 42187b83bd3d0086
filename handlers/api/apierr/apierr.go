// Package apierr maps the service error taxonomy onto the HTTP status
// contract: validation 400, forbidden 403, not-found 404, everything that
// went wrong server-side 500. Only the stable message and field list reach
// the client; wrapped internal errors stay in the log.
package apierr

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/justArale/recipe-book-server/core"
	"github.com/sirupsen/logrus"
)

func Render(w http.ResponseWriter, r *http.Request, err error) {
	var ce *core.Error
	if !errors.As(err, &ce) {
		ce = core.UpstreamFailure("Something went wrong", err)
	}

	status := http.StatusInternalServerError
	switch ce.Kind {
	case core.KindValidation:
		status = http.StatusBadRequest
	case core.KindForbidden:
		status = http.StatusForbidden
	case core.KindNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"error": err,
			"path":  r.URL.Path,
		}).Error("Request failed")
	}

	payload := map[string]any{"error": ce.Message}
	if len(ce.Fields) > 0 {
		payload["fields"] = ce.Fields
	}
	render.Status(r, status)
	render.JSON(w, r, payload)
}
