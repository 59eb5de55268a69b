package validator

import (
	"errors"
	"fmt"
	bookingserrors "lodging/internal/bookings/errors"
	"lodging/pkg/logger"
	"lodging/pkg/model"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// jsonFieldName makes validation messages use the names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Validate checks a booking document right before it is written.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	return v.validateStruct(booking)
}

// ValidateRequest checks the shape of a client request body.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// CheckTicketEligibility reports why a ticket cannot be used for a hotel
// booking, or nil if it can. A ticket without its type is not eligible.
func CheckTicketEligibility(ticket *model.Ticket) error {
	if ticket.Status == model.TicketStatusReserved {
		return bookingserrors.ErrTicketReserved
	}
	if ticket.TicketType == nil {
		return bookingserrors.ErrHotelNotIncluded
	}
	if ticket.TicketType.IsRemote {
		return bookingserrors.ErrTicketRemote
	}
	if !ticket.TicketType.IncludesHotel {
		return bookingserrors.ErrHotelNotIncluded
	}
	return nil
}

// CheckRoomVacancy returns ErrRoomFull when the room already holds as many
// bookings as its capacity.
func CheckRoomVacancy(room *model.Room, bookingCount int) error {
	if bookingCount >= room.Capacity {
		return bookingserrors.ErrRoomFull
	}
	return nil
}
