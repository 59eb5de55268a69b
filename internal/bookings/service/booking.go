package service

import (
	"context"
	"errors"

	bookingserrors "lodging/internal/bookings/errors"
	"lodging/internal/bookings/events"
	"lodging/internal/bookings/repository"
	"lodging/internal/bookings/validator"
	"lodging/pkg/config"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/model"
)

type BookingService interface {
	ValidateUserBooking(ctx context.Context, userID string) error
	CheckValidBooking(ctx context.Context, roomID string) error
	GetBooking(ctx context.Context, userID string) (*model.Booking, error)
	BookRoomByID(ctx context.Context, userID string, roomID string) (*model.Booking, error)
	ChangeBookingRoomByID(ctx context.Context, userID string, roomID string) (*model.Booking, error)
}

type bookingService struct {
	bookingRepo    repository.BookingRepository
	enrollmentRepo repository.EnrollmentRepository
	ticketRepo     repository.TicketRepository
	roomRepo       repository.RoomRepository
	lockRepo       repository.RoomLockRepository
	validator      *validator.BookingValidator
	publisher      events.Publisher
	cfg            *config.Config
}

// NewBookingService wires the booking rules to their collaborators. lockRepo
// may be nil, in which case admission is not serialized per room.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	enrollmentRepo repository.EnrollmentRepository,
	ticketRepo repository.TicketRepository,
	roomRepo repository.RoomRepository,
	lockRepo repository.RoomLockRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		enrollmentRepo: enrollmentRepo,
		ticketRepo:     ticketRepo,
		roomRepo:       roomRepo,
		lockRepo:       lockRepo,
		validator:      validator,
		publisher:      publisher,
		cfg:            cfg,
	}
}

// ValidateUserBooking checks that the user holds a paid, in-person ticket
// that includes hotel.
func (s *bookingService) ValidateUserBooking(ctx context.Context, userID string) error {
	enrollment, err := s.enrollmentRepo.FindWithAddressByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrEnrollmentNotFound) {
			s.cfg.Log.Warn("Booking rejected: no enrollment", "user_id", userID)
			return apperrors.CannotBook("User has no enrollment")
		}
		s.cfg.Log.Error("Failed to load enrollment", "user_id", userID, "error", err)
		return apperrors.Internal("Failed to load enrollment", err)
	}

	ticket, err := s.ticketRepo.FindByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrTicketNotFound) {
			s.cfg.Log.Warn("Booking rejected: no ticket", "user_id", userID, "enrollment_id", enrollment.ID)
			return apperrors.NotFound("Ticket")
		}
		s.cfg.Log.Error("Failed to load ticket", "user_id", userID, "enrollment_id", enrollment.ID, "error", err)
		return apperrors.Internal("Failed to load ticket", err)
	}

	if err := validator.CheckTicketEligibility(ticket); err != nil {
		s.cfg.Log.Warn("Booking rejected: ticket not eligible",
			"user_id", userID,
			"ticket_id", ticket.ID,
			"reason", err,
		)
		return apperrors.Forbidden("Ticket does not allow hotel booking").
			WithDetails(map[string]any{"reason": err.Error()})
	}

	return nil
}

// CheckValidBooking checks that the room exists and has a free place. A
// missing room is reported as Forbidden, not NotFound.
func (s *bookingService) CheckValidBooking(ctx context.Context, roomID string) error {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			s.cfg.Log.Warn("Booking rejected: room not found", "room_id", roomID)
			return apperrors.Forbidden("Room is not available")
		}
		s.cfg.Log.Error("Failed to load room", "room_id", roomID, "error", err)
		return apperrors.Internal("Failed to load room", err)
	}

	bookings, err := s.bookingRepo.FindByRoomID(ctx, roomID)
	if err != nil {
		s.cfg.Log.Error("Failed to load room bookings", "room_id", roomID, "error", err)
		return apperrors.Internal("Failed to load room bookings", err)
	}

	if err := validator.CheckRoomVacancy(room, len(bookings)); err != nil {
		s.cfg.Log.Warn("Booking rejected: room is full",
			"room_id", roomID,
			"capacity", room.Capacity,
			"bookings", len(bookings),
		)
		return apperrors.Forbidden("Room is at full capacity")
	}

	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID string) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Booking")
		}
		s.cfg.Log.Error("Failed to load booking", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load booking", err)
	}

	return booking, nil
}

func (s *bookingService) BookRoomByID(ctx context.Context, userID string, roomID string) (*model.Booking, error) {
	if err := s.ValidateUserBooking(ctx, userID); err != nil {
		return nil, err
	}

	var booking *model.Booking

	err := s.withRoomLock(ctx, roomID, func() error {
		return s.bookingRepo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			// the callback is re-run on transient commit errors; Create fills in
			// the ID, so every attempt starts from a fresh document
			booking = &model.Booking{
				UserID: userID,
				RoomID: roomID,
			}

			if err := s.CheckValidBooking(txCtx, roomID); err != nil {
				return err
			}
			if err := s.validate(booking); err != nil {
				return err
			}
			if err := s.bookingRepo.Create(txCtx, booking); err != nil {
				if errors.Is(err, bookingserrors.ErrAlreadyBooked) {
					s.cfg.Log.Warn("Booking rejected: user already has a booking", "user_id", userID)
					return apperrors.Forbidden("User already has a booking")
				}
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logWriteFailure("Failed to book room", userID, roomID, err)
		return nil, err
	}

	s.cfg.Log.Info("Room booked successfully",
		"booking_id", booking.ID,
		"user_id", userID,
		"room_id", roomID,
	)

	if err := s.publisher.BookingCreated(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking created event", "booking_id", booking.ID, "error", err)
	}

	return booking, nil
}

// ChangeBookingRoomByID moves the user's existing booking to roomID. Ticket
// eligibility is not checked again; only the target room's capacity is.
func (s *bookingService) ChangeBookingRoomByID(ctx context.Context, userID string, roomID string) (*model.Booking, error) {
	if roomID == "" {
		s.cfg.Log.Warn("Room change rejected: no room given", "user_id", userID)
		return nil, apperrors.Forbidden("Room ID is required")
	}

	var (
		updated        *model.Booking
		previousRoomID string
	)

	err := s.withRoomLock(ctx, roomID, func() error {
		return s.bookingRepo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.CheckValidBooking(txCtx, roomID); err != nil {
				return err
			}

			existing, err := s.bookingRepo.FindByUserID(txCtx, userID)
			if err != nil {
				if errors.Is(err, bookingserrors.ErrNotFound) {
					s.cfg.Log.Warn("Room change rejected: user has no booking", "user_id", userID)
					return apperrors.Forbidden("User has no booking to change")
				}
				return apperrors.Internal("Failed to load booking", err)
			}
			if existing.UserID != userID {
				s.cfg.Log.Warn("Room change rejected: booking belongs to another user",
					"user_id", userID,
					"booking_id", existing.ID,
				)
				return apperrors.Forbidden("Booking belongs to another user")
			}

			booking := &model.Booking{
				ID:     existing.ID,
				UserID: userID,
				RoomID: roomID,
			}
			if err := s.validate(booking); err != nil {
				return err
			}

			result, err := s.bookingRepo.Upsert(txCtx, booking)
			if err != nil {
				if errors.Is(err, bookingserrors.ErrAlreadyBooked) {
					return apperrors.Forbidden("User already has a booking")
				}
				return apperrors.Internal("Failed to update booking", err)
			}

			previousRoomID = existing.RoomID
			updated = result
			return nil
		})
	})
	if err != nil {
		s.logWriteFailure("Failed to change booking room", userID, roomID, err)
		return nil, err
	}

	s.cfg.Log.Info("Booking room changed successfully",
		"booking_id", updated.ID,
		"user_id", userID,
		"previous_room_id", previousRoomID,
		"room_id", roomID,
	)

	if err := s.publisher.BookingRoomChanged(ctx, updated, previousRoomID); err != nil {
		s.cfg.Log.Warn("Failed to publish booking room changed event", "booking_id", updated.ID, "error", err)
	}

	return updated, nil
}

// --- Helpers ---

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// withRoomLock runs fn while holding the advisory lock for roomID, so that the
// capacity check and the write are not interleaved with another request for
// the same room. Without a lock repository fn runs unguarded.
func (s *bookingService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	if s.lockRepo == nil || !s.cfg.RoomLockEnabled {
		return fn()
	}

	lock, err := s.lockRepo.Acquire(ctx, roomID, s.cfg.RoomLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomLocked) {
			s.cfg.Log.Warn("Room lock held by another request", "room_id", roomID)
			return apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire room lock", err)
	}
	defer func() {
		// the request may already be cancelled; the lock must still go
		if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), lock); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	return fn()
}

func (s *bookingService) logWriteFailure(msg, userID, roomID string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		s.cfg.Log.Error(msg, "user_id", userID, "room_id", roomID, "error", err)
		return
	}
	s.cfg.Log.Debug(msg, "user_id", userID, "room_id", roomID, "code", appErr.Code)
}
