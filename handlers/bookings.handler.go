package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cleaning-scheduler/domain"
	error2 "cleaning-scheduler/error"
	"cleaning-scheduler/middleware"
	"cleaning-scheduler/repository"
	"cleaning-scheduler/services"
)

type BookingsHandler struct {
	bookingService services.BookingService
	ledger         *repository.Ledger
	tracer         trace.Tracer
	logger         *logger.Logger
}

func NewBookingsHandler(bookingService services.BookingService, ledger *repository.Ledger,
	tr trace.Tracer, log *logger.Logger) *BookingsHandler {
	return &BookingsHandler{
		bookingService: bookingService,
		ledger:         ledger,
		tracer:         tr,
		logger:         log,
	}
}

func (s *BookingsHandler) CreateBooking(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "BookingsHandler.CreateBooking")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var form domain.BookingFormData
	if err := form.FromJSON(h.Body); err != nil {
		error2.ReturnJSONError(rw, "Unable to decode json", http.StatusBadRequest)
		return
	}

	booking, err := s.bookingService.CreateBooking(spanCtx, form, viewer)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusCreated)
	if err := booking.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *BookingsHandler) UpdateBooking(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "BookingsHandler.UpdateBooking")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(h)["id"])
	if err != nil {
		error2.ReturnJSONError(rw, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var updates domain.BookingUpdate
	if err := updates.FromJSON(h.Body); err != nil {
		error2.ReturnJSONError(rw, "Unable to decode json", http.StatusBadRequest)
		return
	}

	booking, err := s.bookingService.UpdateBooking(spanCtx, id, updates, viewer)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}

	if err := booking.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *BookingsHandler) DeleteBooking(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "BookingsHandler.DeleteBooking")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(h)["id"])
	if err != nil {
		error2.ReturnJSONError(rw, "Invalid booking id", http.StatusBadRequest)
		return
	}

	if err := s.bookingService.DeleteBooking(spanCtx, id, viewer); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (s *BookingsHandler) ChangeStatus(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "BookingsHandler.ChangeStatus")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(h)["id"])
	if err != nil {
		error2.ReturnJSONError(rw, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var body struct {
		Status domain.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(h.Body).Decode(&body); err != nil {
		error2.ReturnJSONError(rw, "Unable to decode json", http.StatusBadRequest)
		return
	}

	if err := s.bookingService.ChangeStatus(spanCtx, id, body.Status, viewer); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (s *BookingsHandler) AssignCleaner(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "BookingsHandler.AssignCleaner")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(h)["id"])
	if err != nil {
		error2.ReturnJSONError(rw, "Invalid booking id", http.StatusBadRequest)
		return
	}

	var body struct {
		CleanerID uuid.UUID `json:"cleaner_id"`
	}
	if err := json.NewDecoder(h.Body).Decode(&body); err != nil {
		error2.ReturnJSONError(rw, "Unable to decode json", http.StatusBadRequest)
		return
	}

	if err := s.bookingService.AssignCleaner(spanCtx, id, body.CleanerID, viewer); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (s *BookingsHandler) GetAllBookings(rw http.ResponseWriter, h *http.Request) {
	_, span := s.tracer.Start(h.Context(), "BookingsHandler.GetAllBookings")
	defer span.End()

	bookings := s.ledger.AllBookings()
	if err := bookings.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *BookingsHandler) GetTodayTurns(rw http.ResponseWriter, h *http.Request) {
	_, span := s.tracer.Start(h.Context(), "BookingsHandler.GetTodayTurns")
	defer span.End()

	turns := s.ledger.TodayTurns(time.Now())
	if err := turns.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *BookingsHandler) GetUpcomingCleanings(rw http.ResponseWriter, h *http.Request) {
	_, span := s.tracer.Start(h.Context(), "BookingsHandler.GetUpcomingCleanings")
	defer span.End()

	upcoming := s.ledger.UpcomingCleanings(time.Now())
	if err := upcoming.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *BookingsHandler) GetBookingsByStatus(rw http.ResponseWriter, h *http.Request) {
	_, span := s.tracer.Start(h.Context(), "BookingsHandler.GetBookingsByStatus")
	defer span.End()

	groups := s.ledger.BookingsByStatus()
	if err := json.NewEncoder(rw).Encode(groups); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *BookingsHandler) MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).
			Info("Method [", h.Method, "] - Hit path: ", h.URL.Path)
		rw.Header().Add("Content-Type", "application/json")
		next.ServeHTTP(rw, h)
	})
}

// writeServiceError maps service-layer failures onto HTTP status codes.
// Validation and conflict failures carry their structured payloads so callers
// can render field errors and conflicting bookings.
func writeServiceError(rw http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError
	var transitionErr *domain.TransitionError
	switch {
	case errors.As(err, &conflictErr):
		error2.ReturnJSONDetails(rw, error2.ErrorDetails{
			Error:     conflictErr.Error(),
			Conflicts: conflictErr.Conflicts,
		}, http.StatusConflict)
	case errors.As(err, &validationErr):
		error2.ReturnJSONDetails(rw, error2.ErrorDetails{
			Error:    validationErr.Error(),
			Errors:   validationErr.Errors,
			Warnings: validationErr.Warnings,
		}, http.StatusBadRequest)
	case errors.As(err, &transitionErr):
		error2.ReturnJSONError(rw, transitionErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrPropertyNotFound):
		error2.ReturnJSONError(rw, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrPermissionDenied):
		error2.ReturnJSONError(rw, err.Error(), http.StatusForbidden)
	default:
		error2.ReturnJSONError(rw, err.Error(), http.StatusBadGateway)
	}
}
