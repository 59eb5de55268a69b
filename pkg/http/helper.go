package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "lodging/pkg/errors"
)

// UserIDHeader carries the caller identity set by the upstream authenticator.
const UserIDHeader = "X-User-ID"

func ExtractUserID(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		return "", apperrors.Unauthorized("Missing " + UserIDHeader + " header")
	}
	return userID, nil
}

// DecodeJSON decodes a request body into target, rejecting unknown fields.
func DecodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body cannot be empty")
		case errors.As(err, &maxBytesErr):
			return apperrors.New(apperrors.CodeBadRequest, "Request body too large", http.StatusRequestEntityTooLarge)
		default:
			return apperrors.InvalidInput("Invalid request body")
		}
	}
	return nil
}
