package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
)

// maxRequestBody bounds request bodies; JSON payloads here are small.
const maxRequestBody = 1 << 20

// errorPayload is the uniform failure envelope.
type errorPayload struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// writeError maps err onto the wire: status from the domain code, body from
// the client-safe message. Unknown errors are logged server-side and collapse
// to a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.CodeOf(err)
	if status == http.StatusInternalServerError {
		requestID := "-"
		if r != nil {
			if rid := strings.TrimSpace(r.Header.Get("X-Request-ID")); rid != "" {
				requestID = rid
			}
		}
		log.Printf("request failed request_id=%s err=%v", requestID, err)
	}

	payload := errorPayload{Error: errorBody{
		Code:    string(code),
		Message: apperrors.PublicMessage(err),
	}}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) && len(domainErr.Metadata) > 0 {
		payload.Error.Metadata = domainErr.Metadata
	}
	if writeErr := httpx.WriteJSON(w, status, payload); writeErr != nil {
		log.Printf("write error response: %v", writeErr)
	}
}

// decodeJSON decodes a request body into target, rejecting unknown fields and
// trailing content. Failures surface as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return apperrors.New(apperrors.CodeValidation, "request body is required")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, decodeMessage(err), err)
	}
	if decoder.More() {
		return apperrors.New(apperrors.CodeValidation, "request body must contain a single JSON object")
	}
	return nil
}

func decodeMessage(err error) string {
	var (
		syntaxErr    *json.SyntaxError
		typeErr      *json.UnmarshalTypeError
		maxBytesErr  *http.MaxBytesError
		unknownField = strings.HasPrefix(err.Error(), "json: unknown field")
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &syntaxErr):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &maxBytesErr):
		return "request body is too large"
	case unknownField:
		return strings.TrimPrefix(err.Error(), "json: ")
	}
	return "request body could not be decoded"
}
