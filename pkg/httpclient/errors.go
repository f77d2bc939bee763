package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/samko5sam/miria/pkg/errors"
)

// apiErrorBody mirrors the error payload returned by the marketplace API,
// which reports failures as {"message": "..."}.
type apiErrorBody struct {
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the body matches the API's standard
// {"message": ...} format the message is preserved; otherwise the raw body is
// included.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", operation, resp.StatusCode, err)
	}

	message := string(bodyBytes)
	var body apiErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Message != "" {
		message = body.Message
	}

	return mapStatusError(resp.StatusCode, message, operation)
}

// mapStatusError translates an HTTP status code into an AppError that
// preserves the error semantics for errors.Is checks upstream.
func mapStatusError(status int, message, operation string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", operation, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(operation, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.AuthExpired(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status >= 500:
		return apperrors.Network(fmt.Errorf("%s: server error %d: %s", operation, status, message))
	default:
		return &apperrors.AppError{
			Code:    "HTTP_ERROR",
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}
