package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestWriteError tests the JSON error envelope
func TestWriteError(t *testing.T) {
	responseRecorder := httptest.NewRecorder()

	WriteError(responseRecorder, MatchNotFound(42))

	if responseRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, responseRecorder.Code)
	}

	if contentType := responseRecorder.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	var response ErrorResponse
	if err := json.NewDecoder(responseRecorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Error.Code != ErrCodeMatchNotFound {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeMatchNotFound, response.Error.Code)
	}

	if response.Error.Message != "Match not found: 42" {
		t.Errorf("Expected message 'Match not found: 42', got '%s'", response.Error.Message)
	}
}

// TestConstructorStatuses tests the HTTP status of each constructor
func TestConstructorStatuses(t *testing.T) {
	testCases := []struct {
		name     string
		apiError *APIError
		status   int
	}{
		{"InvalidRequestBody", InvalidRequestBody("bad"), http.StatusBadRequest},
		{"ValidationFailed", ValidationFailed("bad"), http.StatusBadRequest},
		{"BlobNotFound", BlobNotFound("h"), http.StatusNotFound},
		{"Unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"InvalidCredentials", InvalidCredentials(), http.StatusUnauthorized},
		{"DataSourceError", DataSourceError("down"), http.StatusBadGateway},
		{"InternalError", InternalError("oops"), http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if testCase.apiError.Status != testCase.status {
				t.Errorf("Expected status %d, got %d", testCase.status, testCase.apiError.Status)
			}

			if testCase.apiError.Error() != testCase.apiError.Message {
				t.Error("Expected Error() to return the message")
			}
		})
	}
}
