package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/OPGLOL/opgl-matchboard-service/internal/cache"
	"github.com/OPGLOL/opgl-matchboard-service/internal/imageref"
	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
	"github.com/OPGLOL/opgl-matchboard-service/internal/proxy"
)

// MockBoardService is a mock implementation of BoardService for testing
type MockBoardService struct {
	CurrentBoardFunc func(ctx context.Context) (*models.MatchBoard, error)
	MatchDetailFunc  func(ctx context.Context, gameID int64) (*models.MatchDetail, error)
	HistoryFunc      func(ctx context.Context) ([]models.HistoryEntry, error)
	ResolveImageFunc func(ctx context.Context, payload imageref.Payload) imageref.ResourceRef
	BlobFunc         func(ctx context.Context, handle string) (*cache.Blob, error)
	ReleaseBlobFunc  func(ctx context.Context, handle string) error
}

func (m *MockBoardService) CurrentBoard(ctx context.Context) (*models.MatchBoard, error) {
	if m.CurrentBoardFunc != nil {
		return m.CurrentBoardFunc(ctx)
	}
	return &models.MatchBoard{}, nil
}

func (m *MockBoardService) MatchDetail(ctx context.Context, gameID int64) (*models.MatchDetail, error) {
	if m.MatchDetailFunc != nil {
		return m.MatchDetailFunc(ctx, gameID)
	}
	return nil, proxy.ErrMatchNotFound
}

func (m *MockBoardService) History(ctx context.Context) ([]models.HistoryEntry, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx)
	}
	return []models.HistoryEntry{}, nil
}

func (m *MockBoardService) ResolveImage(ctx context.Context, payload imageref.Payload) imageref.ResourceRef {
	if m.ResolveImageFunc != nil {
		return m.ResolveImageFunc(ctx, payload)
	}
	return imageref.Resolve(payload)
}

func (m *MockBoardService) Blob(ctx context.Context, handle string) (*cache.Blob, error) {
	if m.BlobFunc != nil {
		return m.BlobFunc(ctx, handle)
	}
	return nil, cache.ErrBlobNotFound
}

func (m *MockBoardService) ReleaseBlob(ctx context.Context, handle string) error {
	if m.ReleaseBlobFunc != nil {
		return m.ReleaseBlobFunc(ctx, handle)
	}
	return nil
}

// TestNewHandler tests the NewHandler constructor
func TestNewHandler(t *testing.T) {
	mockService := &MockBoardService{}
	handler := NewHandler(mockService)

	if handler == nil {
		t.Fatal("Expected handler to not be nil")
	}

	if handler.boardService != mockService {
		t.Error("Expected boardService to be set correctly")
	}
}

// TestHealthCheck tests the health check endpoint
func TestHealthCheck(t *testing.T) {
	handler := &Handler{}

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	responseRecorder := httptest.NewRecorder()
	handler.HealthCheck(responseRecorder, request)

	if responseRecorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, responseRecorder.Code)
	}

	if contentType := responseRecorder.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	var response map[string]string
	if err := json.NewDecoder(responseRecorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", response["status"])
	}

	if response["service"] != "opgl-matchboard" {
		t.Errorf("Expected service 'opgl-matchboard', got '%s'", response["service"])
	}
}

// TestGetCurrentBoard_Success tests the board endpoint
func TestGetCurrentBoard_Success(t *testing.T) {
	mockService := &MockBoardService{
		CurrentBoardFunc: func(ctx context.Context) (*models.MatchBoard, error) {
			return &models.MatchBoard{
				TeamA:        models.Roster{{GameName: "Foo", RiotID: "Foo#NA1"}},
				TeamASummary: models.TeamSummary{Kills: 12, Win: true},
			}, nil
		},
	}
	handler := NewHandler(mockService)

	responseRecorder := httptest.NewRecorder()
	handler.GetCurrentBoard(responseRecorder, httptest.NewRequest(http.MethodGet, "/api/v1/board/current", nil))

	if responseRecorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, responseRecorder.Code)
	}

	var response struct {
		TeamA        []*models.PlayerCard `json:"teamA"`
		TeamASummary models.TeamSummary   `json:"teamASummary"`
	}
	if err := json.NewDecoder(responseRecorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.TeamA) != models.TeamSize {
		t.Errorf("Expected %d slots, got %d", models.TeamSize, len(response.TeamA))
	}

	if response.TeamA[0] == nil || response.TeamA[0].RiotID != "Foo#NA1" {
		t.Errorf("Expected first slot to be Foo#NA1, got %+v", response.TeamA[0])
	}

	if response.TeamA[1] != nil {
		t.Error("Expected empty slots to encode as null")
	}

	if !response.TeamASummary.Win || response.TeamASummary.Kills != 12 {
		t.Errorf("Unexpected summary %+v", response.TeamASummary)
	}
}

// TestGetCurrentBoard_SourceError tests that source failures map to 502
func TestGetCurrentBoard_SourceError(t *testing.T) {
	mockService := &MockBoardService{
		CurrentBoardFunc: func(ctx context.Context) (*models.MatchBoard, error) {
			return nil, errors.New("client offline")
		},
	}
	handler := NewHandler(mockService)

	responseRecorder := httptest.NewRecorder()
	handler.GetCurrentBoard(responseRecorder, httptest.NewRequest(http.MethodGet, "/api/v1/board/current", nil))

	if responseRecorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, responseRecorder.Code)
	}
}

// TestGetHistory tests the history endpoint
func TestGetHistory(t *testing.T) {
	mockService := &MockBoardService{
		HistoryFunc: func(ctx context.Context) ([]models.HistoryEntry, error) {
			return []models.HistoryEntry{{GameID: 1, GameType: "ARAM", SummonerName: "Foo"}}, nil
		},
	}
	handler := NewHandler(mockService)

	responseRecorder := httptest.NewRecorder()
	handler.GetHistory(responseRecorder, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	var entries []models.HistoryEntry
	if err := json.NewDecoder(responseRecorder.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(entries) != 1 || entries[0].GameType != "ARAM" {
		t.Errorf("Unexpected entries %+v", entries)
	}
}

// TestGetMatchDetail tests game id parsing and error mapping
func TestGetMatchDetail(t *testing.T) {
	mockService := &MockBoardService{
		MatchDetailFunc: func(ctx context.Context, gameID int64) (*models.MatchDetail, error) {
			switch gameID {
			case 42:
				return &models.MatchDetail{GameID: 42, GameType: "ranked solo"}, nil
			case 500:
				return nil, errors.New("upstream broke")
			default:
				return nil, proxy.ErrMatchNotFound
			}
		},
	}
	handler := NewHandler(mockService)

	testCases := []struct {
		name           string
		gameID         string
		expectedStatus int
	}{
		{"found", "42", http.StatusOK},
		{"not found", "43", http.StatusNotFound},
		{"source error", "500", http.StatusBadGateway},
		{"not a number", "abc", http.StatusBadRequest},
		{"zero", "0", http.StatusBadRequest},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/v1/matches/"+testCase.gameID, nil)
			request = mux.SetURLVars(request, map[string]string{"gameId": testCase.gameID})
			responseRecorder := httptest.NewRecorder()

			handler.GetMatchDetail(responseRecorder, request)

			if responseRecorder.Code != testCase.expectedStatus {
				t.Errorf("Expected status code %d, got %d", testCase.expectedStatus, responseRecorder.Code)
			}
		})
	}
}

// TestResolveImage tests payload decoding for each wire shape
func TestResolveImage(t *testing.T) {
	handler := NewHandler(&MockBoardService{})

	testCases := []struct {
		name         string
		body         string
		expectedKind imageref.RefKind
	}{
		{"url", `{"payload":"https://example.com/a.png"}`, imageref.RefURL},
		{"null", `{"payload":null}`, imageref.RefNone},
		{"missing", `{}`, imageref.RefNone},
		{"signed bytes", `{"payload":[-119,80,78,71]}`, imageref.RefBlob},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/api/v1/images/resolve", bytes.NewBufferString(testCase.body))
			responseRecorder := httptest.NewRecorder()

			handler.ResolveImage(responseRecorder, request)

			if responseRecorder.Code != http.StatusOK {
				t.Fatalf("Expected status code %d, got %d", http.StatusOK, responseRecorder.Code)
			}

			var ref imageref.ResourceRef
			if err := json.NewDecoder(responseRecorder.Body).Decode(&ref); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if ref.Kind != testCase.expectedKind {
				t.Errorf("Expected kind '%s', got '%s'", testCase.expectedKind, ref.Kind)
			}
		})
	}
}

// TestResolveImage_InvalidBody tests malformed JSON handling
func TestResolveImage_InvalidBody(t *testing.T) {
	handler := NewHandler(&MockBoardService{})

	responseRecorder := httptest.NewRecorder()
	handler.ResolveImage(responseRecorder, httptest.NewRequest(http.MethodPost, "/api/v1/images/resolve", bytes.NewBufferString("invalid")))

	if responseRecorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, responseRecorder.Code)
	}
}

// TestGetBlob tests raw blob delivery
func TestGetBlob(t *testing.T) {
	mockService := &MockBoardService{
		BlobFunc: func(ctx context.Context, handle string) (*cache.Blob, error) {
			if handle == "known" {
				return &cache.Blob{MIMEType: imageref.MIMEPNG, Data: []byte{0x89, 0x50, 0x4E, 0x47}}, nil
			}
			return nil, cache.ErrBlobNotFound
		},
	}
	handler := NewHandler(mockService)

	request := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/blobs/known", nil), map[string]string{"handle": "known"})
	responseRecorder := httptest.NewRecorder()
	handler.GetBlob(responseRecorder, request)

	if responseRecorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, responseRecorder.Code)
	}

	if contentType := responseRecorder.Header().Get("Content-Type"); contentType != imageref.MIMEPNG {
		t.Errorf("Expected Content-Type '%s', got '%s'", imageref.MIMEPNG, contentType)
	}

	if !bytes.Equal(responseRecorder.Body.Bytes(), []byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Error("Expected blob bytes in body")
	}

	missing := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/blobs/gone", nil), map[string]string{"handle": "gone"})
	missingRecorder := httptest.NewRecorder()
	handler.GetBlob(missingRecorder, missing)

	if missingRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, missingRecorder.Code)
	}
}

// TestReleaseBlob tests blob release
func TestReleaseBlob(t *testing.T) {
	released := ""
	mockService := &MockBoardService{
		ReleaseBlobFunc: func(ctx context.Context, handle string) error {
			released = handle
			return nil
		},
	}
	handler := NewHandler(mockService)

	request := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/v1/blobs/abc", nil), map[string]string{"handle": "abc"})
	responseRecorder := httptest.NewRecorder()
	handler.ReleaseBlob(responseRecorder, request)

	if responseRecorder.Code != http.StatusNoContent {
		t.Errorf("Expected status code %d, got %d", http.StatusNoContent, responseRecorder.Code)
	}

	if released != "abc" {
		t.Errorf("Expected handle 'abc' to be released, got '%s'", released)
	}
}
