package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondJSON_EncodeFailureGoesToInjectedLogger(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)

	w := httptest.NewRecorder()
	respondJSON(logger, w, http.StatusOK, make(chan int))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to encode response", logs.All()[0].Message)
}

func TestRespondError_WritesErrorBody(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(zap.NewNop(), w, http.StatusBadRequest, "invalid_request", "invalid JSON body")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid JSON body","code":"invalid_request"}`, w.Body.String())
}
