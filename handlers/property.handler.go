package handlers

import (
	"net/http"

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

type PropertyHandler struct {
	propertyService services.PropertyService
	ledger          *repository.Ledger
	tracer          trace.Tracer
	logger          *logger.Logger
}

func NewPropertyHandler(propertyService services.PropertyService, ledger *repository.Ledger,
	tr trace.Tracer, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		ledger:          ledger,
		tracer:          tr,
		logger:          log,
	}
}

func (s *PropertyHandler) CreateProperty(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "PropertyHandler.CreateProperty")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var form domain.PropertyFormData
	if err := form.FromJSON(h.Body); err != nil {
		error2.ReturnJSONError(rw, "Unable to decode json", http.StatusBadRequest)
		return
	}

	property, err := s.propertyService.CreateProperty(spanCtx, form, viewer)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusCreated)
	if err := property.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *PropertyHandler) UpdateProperty(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "PropertyHandler.UpdateProperty")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(h)["id"])
	if err != nil {
		error2.ReturnJSONError(rw, "Invalid property id", http.StatusBadRequest)
		return
	}

	var form domain.PropertyFormData
	if err := form.FromJSON(h.Body); err != nil {
		error2.ReturnJSONError(rw, "Unable to decode json", http.StatusBadRequest)
		return
	}

	property, err := s.propertyService.UpdateProperty(spanCtx, id, form, viewer)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}

	if err := property.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}

func (s *PropertyHandler) DeleteProperty(rw http.ResponseWriter, h *http.Request) {
	spanCtx, span := s.tracer.Start(h.Context(), "PropertyHandler.DeleteProperty")
	defer span.End()

	viewer, ok := middleware.ViewerFromContext(h.Context())
	if !ok {
		error2.ReturnJSONError(rw, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(mux.Vars(h)["id"])
	if err != nil {
		error2.ReturnJSONError(rw, "Invalid property id", http.StatusBadRequest)
		return
	}

	if err := s.propertyService.DeleteProperty(spanCtx, id, viewer); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeServiceError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (s *PropertyHandler) GetAllProperties(rw http.ResponseWriter, h *http.Request) {
	_, span := s.tracer.Start(h.Context(), "PropertyHandler.GetAllProperties")
	defer span.End()

	properties := s.ledger.AllProperties()
	if err := properties.ToJSON(rw); err != nil {
		s.logger.WithFields(logger.Fields{"path": "handlers"}).Error("Unable to convert to json: ", err)
	}
}
