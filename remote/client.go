package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"cleaning-scheduler/domain"
)

// HTTPStore talks to the remote store's REST surface. Every request runs
// through a circuit breaker; while the breaker is open the store counts as
// unavailable without burning a network round trip.
type HTTPStore struct {
	baseURL        string
	token          string
	client         *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	tracer         trace.Tracer
	logger         *logger.Logger
}

func NewHTTPStore(baseURL, token string, tr trace.Tracer, log *logger.Logger) *HTTPStore {
	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "RemoteStore",
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logger.Fields{"path": "remote"}).Infof("Circuit Breaker state changed from %s to %s", from, to)
		},
	})
	return &HTTPStore{
		baseURL:        baseURL,
		token:          token,
		client:         &http.Client{Timeout: 10 * time.Second},
		circuitBreaker: circuitBreaker,
		tracer:         tr,
		logger:         log,
	}
}

func (s *HTTPStore) ListBookings(ctx context.Context) (domain.Bookings, error) {
	body, err := s.performRequestWithCircuitBreaker(ctx, http.MethodGet, "/bookings", nil)
	if err != nil {
		return nil, err
	}
	var bookings domain.Bookings
	if err := json.Unmarshal(body, &bookings); err != nil {
		return nil, fmt.Errorf("Error decoding bookings response: %w", err)
	}
	return bookings, nil
}

func (s *HTTPStore) InsertBooking(ctx context.Context, booking *domain.Booking) error {
	_, err := s.performRequestWithCircuitBreaker(ctx, http.MethodPost, "/bookings", booking)
	return err
}

func (s *HTTPStore) UpdateBooking(ctx context.Context, booking *domain.Booking) error {
	_, err := s.performRequestWithCircuitBreaker(ctx, http.MethodPatch, "/bookings/"+booking.ID.String(), booking)
	return err
}

func (s *HTTPStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	_, err := s.performRequestWithCircuitBreaker(ctx, http.MethodDelete, "/bookings/"+id.String(), nil)
	return err
}

func (s *HTTPStore) ListProperties(ctx context.Context) (domain.Properties, error) {
	body, err := s.performRequestWithCircuitBreaker(ctx, http.MethodGet, "/properties", nil)
	if err != nil {
		return nil, err
	}
	var properties domain.Properties
	if err := json.Unmarshal(body, &properties); err != nil {
		return nil, fmt.Errorf("Error decoding properties response: %w", err)
	}
	return properties, nil
}

func (s *HTTPStore) InsertProperty(ctx context.Context, property *domain.Property) error {
	_, err := s.performRequestWithCircuitBreaker(ctx, http.MethodPost, "/properties", property)
	return err
}

func (s *HTTPStore) UpdateProperty(ctx context.Context, property *domain.Property) error {
	_, err := s.performRequestWithCircuitBreaker(ctx, http.MethodPatch, "/properties/"+property.ID.String(), property)
	return err
}

func (s *HTTPStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	_, err := s.performRequestWithCircuitBreaker(ctx, http.MethodDelete, "/properties/"+id.String(), nil)
	return err
}

func (s *HTTPStore) performRequestWithCircuitBreaker(ctx context.Context, method, path string, payload any) ([]byte, error) {
	spanCtx, span := s.tracer.Start(ctx, "HTTPStore"+path)
	defer span.End()

	var requestBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		requestBody = bytes.NewReader(encoded)
	}

	result, err := s.circuitBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(spanCtx, method, s.baseURL+path, requestBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}
		otel.GetTextMapPropagator().Inject(spanCtx, propagation.HeaderCarrier(req.Header))

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("Remote store rejected %s %s: status %d", method, path, resp.StatusCode)
		}
		return body, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result.([]byte), nil
}
