package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kmehta/water-intake-tracker/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRecordErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, recordErrorStatus(services.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest,
		recordErrorStatus(fmt.Errorf("record for %q: %w", "2024-06-10", services.ErrInvalidInput)),
		"wrapped validation errors still map to 400")
	assert.Equal(t, http.StatusInternalServerError,
		recordErrorStatus(errors.New("connection reset by peer")),
		"store failures are the server's fault")
}
