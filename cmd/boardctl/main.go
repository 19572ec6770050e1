package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

func main() {
	// Load .env file
	godotenv.Load()

	baseURL := flag.String("url", envOr("MATCHBOARD_URL", "http://localhost:8080"), "Matchboard service base URL")
	apiKey := flag.String("api-key", os.Getenv("MATCHBOARD_API_KEY"), "API key sent as X-API-Key")
	gameID := flag.Int64("game", 0, "Show the detail of a finished game instead of the live board")
	copySlot := flag.Int("copy", 0, "Copy the Riot ID of slot N (1-10) to the clipboard")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := &boardClient{
		baseURL:    strings.TrimRight(*baseURL, "/"),
		apiKey:     *apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	var teams []teamBlock
	if *gameID > 0 {
		var detail models.MatchDetail
		if err := client.get(ctx, fmt.Sprintf("/api/v1/matches/%d", *gameID), &detail); err != nil {
			log.Fatalf("Failed to load game %d: %v", *gameID, err)
		}
		fmt.Printf("Game %d  %s  %s\n\n", detail.GameID, detail.GameType, detail.GameTime)
		teams = detailTeams(&detail)
	} else {
		var board models.MatchBoard
		if err := client.get(ctx, "/api/v1/board/current", &board); err != nil {
			log.Fatalf("Failed to load current board: %v", err)
		}
		teams = boardTeams(&board)
	}

	renderTeams(os.Stdout, teams)

	if *copySlot != 0 {
		riotID, err := slotRiotID(teams, *copySlot)
		if err != nil {
			log.Fatalf("Cannot copy slot %d: %v", *copySlot, err)
		}
		if err := clipboard.WriteAll(riotID); err != nil {
			log.Fatalf("Failed to copy to clipboard: %v", err)
		}
		fmt.Printf("\nCopied %s to clipboard\n", riotID)
	}
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

type boardClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func (client *boardClient) get(ctx context.Context, path string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		return err
	}
	if client.apiKey != "" {
		request.Header.Set("X-API-Key", client.apiKey)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(response.Body).Decode(target)
}
