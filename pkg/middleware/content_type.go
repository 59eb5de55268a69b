package middleware

import (
	"mime"
	"net/http"

	apperrors "lodging/pkg/errors"
	httputil "lodging/pkg/http"
	"lodging/pkg/logger"
)

const jsonMediaType = "application/json"

// ContentTypeValidation rejects request bodies that are not declared as JSON.
// Methods without a body pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !carriesBody(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Content-Type")
			mediaType, _, err := mime.ParseMediaType(header)
			if err != nil || mediaType != jsonMediaType {
				log.Warn("Rejected request body content type",
					"request_id", GetRequestID(r.Context()),
					"content_type", header,
					"method", r.Method,
					"path", r.URL.Path,
				)
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest,
					"Content-Type must be application/json", http.StatusUnsupportedMediaType))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
