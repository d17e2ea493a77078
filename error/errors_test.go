package error

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	ReturnJSONError(rec, "Booking not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Booking not found"}`, rec.Body.String())
}

func TestReturnJSONDetailsCarriesStructure(t *testing.T) {
	rec := httptest.NewRecorder()
	ReturnJSONDetails(rec, ErrorDetails{
		Error:    "Found 1 scheduling conflict(s)",
		Errors:   []string{"Found 1 scheduling conflict(s)"},
		Warnings: []string{"Very short cleaning window"},
	}, http.StatusConflict)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"error":"Found 1 scheduling conflict(s)",
		"errors":["Found 1 scheduling conflict(s)"],
		"warnings":["Very short cleaning window"]
	}`, rec.Body.String())
}

func TestReturnJSONDetailsOmitsEmptyFields(t *testing.T) {
	rec := httptest.NewRecorder()
	ReturnJSONDetails(rec, ErrorDetails{Error: "Cannot transition from completed to pending"}, http.StatusUnprocessableEntity)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Cannot transition from completed to pending"}`, rec.Body.String())
}
