package handler

import (
	"net/http"

	"lodging/internal/bookings/service"
	"lodging/internal/bookings/validator"
	apperrors "lodging/pkg/errors"
	httputil "lodging/pkg/http"
	"lodging/pkg/logger"
	"lodging/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const bookingPath = "/api/v1/booking"

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(bookingPath, h.GetBooking)
	router.POST(bookingPath, h.BookRoom)
	router.PUT(bookingPath, h.ChangeRoom)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), userID)
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) BookRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, req, err := h.decodeRequest(r)
	if err != nil {
		h.writeError(w, "BookRoom", err)
		return
	}

	booking, err := h.service.BookRoomByID(r.Context(), userID, req.RoomID)
	if err != nil {
		h.writeError(w, "BookRoom", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.BookingResponse{BookingID: booking.ID}); err != nil {
		h.log.Error("failed to write success response", "handler", "BookRoom", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ChangeRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, req, err := h.decodeRequest(r)
	if err != nil {
		h.writeError(w, "ChangeRoom", err)
		return
	}

	booking, err := h.service.ChangeBookingRoomByID(r.Context(), userID, req.RoomID)
	if err != nil {
		h.writeError(w, "ChangeRoom", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.BookingResponse{BookingID: booking.ID}); err != nil {
		h.log.Error("failed to write success response", "handler", "ChangeRoom", "operation", "WriteSuccess", "error", err)
	}
}

// decodeRequest reads the caller identity and the room request body. An
// absent roomId passes through so the service can reject it.
func (h *BookingHandler) decodeRequest(r *http.Request) (string, *model.BookingRequest, error) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		return "", nil, err
	}

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return "", nil, err
	}

	if err := h.validator.ValidateRequest(&req); err != nil {
		return "", nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	return userID, &req, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
