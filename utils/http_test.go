package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"message": "test"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]string{"result": "success"}))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "success", body["data"].(map[string]interface{})["result"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteCreated(w, map[string]string{"id": "123"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, true, body["success"])
}

func TestWriteError_Envelope(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter) error
		wantStatus int
		wantCode   string
	}{
		{"missing token", WriteMissingToken, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"invalid token", WriteInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"internal", func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") }, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"not found", func(w http.ResponseWriter) error { return WriteNotFound(w, "building not found") }, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", func(w http.ResponseWriter) error { return WriteConflict(w, "duplicate", nil) }, http.StatusConflict, "CONFLICT"},
		{"bad request", func(w http.ResponseWriter) error { return WriteBadRequest(w, "bad", nil) }, http.StatusBadRequest, "BAD_REQUEST"},
		{"rate limited", func(w http.ResponseWriter) error { return WriteTooManyRequests(w, "") }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"credentials", func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") }, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "requiredPermission")
		})
	}
}

func TestWriteInsufficientPermissions(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteInsufficientPermissions(w, "You do not have permission to create buildings", "BUILDINGS:CREATE"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body["code"])
	assert.Equal(t, "BUILDINGS:CREATE", body["requiredPermission"])
	assert.Equal(t, "You do not have permission to create buildings", body["message"])
}

func TestErrorCode_Status(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, CodeMissingToken.Status())
	assert.Equal(t, http.StatusForbidden, CodeInsufficientPermissions.Status())
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("UNKNOWN").Status())
	assert.Equal(t, CodeInternalError.Message(), ErrorCode("UNKNOWN").Message())
}
