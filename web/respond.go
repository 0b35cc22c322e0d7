package web

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/artpar/launchpad/app"
	"github.com/artpar/launchpad/pkg/hal"
	"github.com/artpar/launchpad/ports"
)

// writeHAL serializes a HAL object. GET responses carry a strong ETag
// computed over the body; a matching If-None-Match short-circuits to 304.
func (h *Handler) writeHAL(w http.ResponseWriter, r *http.Request, status int, obj *hal.Object) {
	body, err := json.Marshal(obj)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal hal object")
		h.writeErrorStatus(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", hal.ContentType)
	if r.Method == http.MethodGet {
		sum := sha256.Sum256(body)
		etag := `"` + hex.EncodeToString(sum[:16]) + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps an error to its HTTP status and renders a HAL error
// object.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *hal.ValidationError
	if errors.As(err, &validation) {
		if h.metrics != nil {
			h.metrics.ValidationFailures.WithLabelValues(string(validation.Kind)).Inc()
		}
		h.writeErrorStatus(w, http.StatusUnprocessableEntity, validation.Error())
		return
	}

	var forbidden *app.ForbiddenError
	if errors.As(err, &forbidden) {
		h.writeErrorStatus(w, http.StatusForbidden, forbidden.Error())
		return
	}

	switch {
	case errors.Is(err, ports.ErrNotFound):
		h.writeErrorStatus(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrEmailTaken):
		h.writeErrorStatus(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		h.writeErrorStatus(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeErrorStatus(w http.ResponseWriter, status int, message string) {
	obj := hal.NewObject().
		Set("error", message).
		Set("status", status)
	body, _ := json.Marshal(obj)

	w.Header().Set("Content-Type", hal.ContentType)
	w.WriteHeader(status)
	w.Write(body)
}

// decodeBody parses a JSON request body into a property map. An empty body
// decodes to an empty map.
func decodeBody(r *http.Request) (map[string]any, error) {
	data := map[string]any{}
	if r.Body == nil {
		return data, nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

// stringField reads an optional string property from a decoded body.
func stringField(data map[string]any, name string) string {
	if v, ok := data[name].(string); ok {
		return v
	}
	return ""
}

// stringsField reads a string-array property from a decoded body.
func stringsField(data map[string]any, name string) []string {
	raw, ok := data[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
