package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "lodging/pkg/errors"
	httputil "lodging/pkg/http"
	"lodging/pkg/middleware"
	"lodging/pkg/model"

	"github.com/google/uuid"
)

const (
	bookingPath = "/api/v1/booking"

	defaultTimeout       = 10 * time.Second
	defaultConflictRetry = 100 * time.Millisecond
)

// APIError is a non-2xx answer from the bookings API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookings API returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// BookingClient calls the bookings API on behalf of one user at a time.
//
// Writes carry an idempotency key. A write rejected because another request
// holds the room lock is retried with the same key.
type BookingClient struct {
	api              *jsonClient
	timeout          time.Duration
	conflictAttempts int
	conflictBackoff  time.Duration
}

type Option func(*BookingClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *BookingClient) { c.timeout = timeout }
}

// WithConflictRetries sets how many times a write is sent in total while the
// room stays locked, and the wait before each resend.
func WithConflictRetries(attempts int, backoff time.Duration) Option {
	return func(c *BookingClient) {
		c.conflictAttempts = attempts
		c.conflictBackoff = backoff
	}
}

func NewBookingClient(baseURL string, opts ...Option) *BookingClient {
	c := &BookingClient{
		timeout:          defaultTimeout,
		conflictAttempts: 3,
		conflictBackoff:  defaultConflictRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.conflictAttempts < 1 {
		c.conflictAttempts = 1
	}
	c.api = newJSONClient(baseURL, c.timeout)
	return c
}

func (c *BookingClient) GetBooking(ctx context.Context, userID string) (*model.Booking, error) {
	var booking model.Booking
	if err := c.call(ctx, http.MethodGet, userID, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) BookRoom(ctx context.Context, userID, roomID string) (string, error) {
	var resp model.BookingResponse
	if err := c.call(ctx, http.MethodPost, userID, model.BookingRequest{RoomID: roomID}, &resp); err != nil {
		return "", err
	}
	return resp.BookingID, nil
}

func (c *BookingClient) ChangeRoom(ctx context.Context, userID, roomID string) (string, error) {
	var resp model.BookingResponse
	if err := c.call(ctx, http.MethodPut, userID, model.BookingRequest{RoomID: roomID}, &resp); err != nil {
		return "", err
	}
	return resp.BookingID, nil
}

func (c *BookingClient) WaitForHealthy(ctx context.Context) error {
	return c.api.waitForHealthy(ctx, c.timeout)
}

func (c *BookingClient) call(ctx context.Context, method, userID string, body any, data any) error {
	header := http.Header{}
	header.Set(httputil.UserIDHeader, userID)
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		header.Set(middleware.RequestIDHeader, requestID)
	}

	attempts := 1
	if method != http.MethodGet {
		header.Set(middleware.DefaultIdempotencyHeader, uuid.NewString())
		attempts = c.conflictAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.conflictBackoff):
			}
		}

		resp, err := c.api.do(ctx, method, bookingPath, body, header)
		if err != nil {
			return err
		}

		if !resp.ok() {
			lastErr = toAPIError(resp)
			if resp.StatusCode == http.StatusConflict {
				continue
			}
			return lastErr
		}

		envelope := struct {
			Data any `json:"data"`
		}{Data: data}
		if err := resp.decode(&envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

func toAPIError(resp *jsonResponse) *APIError {
	var errResp httputil.ErrorResponse
	if err := resp.decode(&errResp); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       apperrors.CodeInternal,
			Message:    string(resp.Body),
		}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       errResp.Code,
		Message:    errResp.Error,
	}
}
