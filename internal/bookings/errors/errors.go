package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrTicketNotFound = errors.New("ticket not found")

	ErrRoomNotFound = errors.New("room not found")

	ErrTicketReserved = errors.New("ticket is reserved, not paid")

	ErrTicketRemote = errors.New("ticket type is remote")

	ErrHotelNotIncluded = errors.New("ticket type does not include hotel")

	ErrRoomFull = errors.New("room is at full capacity")

	ErrAlreadyBooked = errors.New("user already has a booking")

	ErrRoomLocked = errors.New("room is being booked by another request")
)
