package lcu

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	ErrLockfileNotFound = errors.New("lockfile not found")
	ErrLeagueNotRunning = errors.New("league client is not running")
	errNotFound         = errors.New("resource not found")
)

// Credentials holds the connection details parsed from the lockfile
type Credentials struct {
	ProcessName string
	PID         string
	Port        string
	Password    string
	Protocol    string
}

// Client talks to the League client's local REST API
type Client struct {
	lockfilePath string
	httpClient   *http.Client

	mu          sync.RWMutex
	credentials *Credentials
	baseURL     string
	authHeader  string
}

// NewClient creates a client that reads credentials from lockfilePath.
// An empty path searches the default install locations.
func NewClient(lockfilePath string) *Client {
	return &Client{
		lockfilePath: lockfilePath,
		httpClient: &http.Client{
			Transport: &http.Transport{
				// the client serves a self-signed certificate
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
			Timeout: 2 * time.Second,
		},
	}
}

// defaultLockfilePaths lists the usual install locations for the current OS
func defaultLockfilePaths() []string {
	if runtime.GOOS == "darwin" {
		return []string{"/Applications/League of Legends.app/Contents/LoL/lockfile"}
	}

	paths := []string{
		"C:/Riot Games/League of Legends/lockfile",
		"C:/Program Files/Riot Games/League of Legends/lockfile",
		"C:/Program Files (x86)/Riot Games/League of Legends/lockfile",
	}
	for _, drive := range []string{"D:", "E:", "F:"} {
		paths = append(paths, filepath.Join(drive, "Riot Games/League of Legends/lockfile"))
	}
	return paths
}

// FindLockfile returns the configured lockfile, or the first default one that exists
func FindLockfile(configured string) (string, error) {
	candidates := defaultLockfilePaths()
	if configured != "" {
		candidates = []string{configured}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrLockfileNotFound
}

// ParseLockfile parses "name:pid:port:password:protocol"
func ParseLockfile(content string) (*Credentials, error) {
	parts := strings.Split(strings.TrimSpace(content), ":")
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid lockfile format: expected 5 parts, got %d", len(parts))
	}

	return &Credentials{
		ProcessName: parts[0],
		PID:         parts[1],
		Port:        parts[2],
		Password:    parts[3],
		Protocol:    parts[4],
	}, nil
}

// Connect reads the lockfile and remembers the credentials it holds
func (client *Client) Connect() (*Credentials, error) {
	path, err := FindLockfile(client.lockfilePath)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	credentials, err := ParseLockfile(string(content))
	if err != nil {
		return nil, err
	}

	client.useCredentials(credentials)
	return credentials, nil
}

func (client *Client) useCredentials(credentials *Credentials) {
	client.mu.Lock()
	defer client.mu.Unlock()

	client.credentials = credentials
	client.baseURL = fmt.Sprintf("https://127.0.0.1:%s", credentials.Port)
	client.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte("riot:"+credentials.Password))
}

// Disconnect forgets the credentials so the next call reconnects
func (client *Client) Disconnect() {
	client.mu.Lock()
	defer client.mu.Unlock()

	client.credentials = nil
	client.baseURL = ""
	client.authHeader = ""
}

// Credentials returns the current credentials, connecting first if needed
func (client *Client) Credentials() (*Credentials, error) {
	client.mu.RLock()
	credentials := client.credentials
	client.mu.RUnlock()

	if credentials != nil {
		return credentials, nil
	}
	return client.Connect()
}

// getJSON performs a GET against the client API and decodes the body into target
func (client *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if _, err := client.Credentials(); err != nil {
		return fmt.Errorf("%w: %v", ErrLeagueNotRunning, err)
	}

	client.mu.RLock()
	baseURL, authHeader := client.baseURL, client.authHeader
	client.mu.RUnlock()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set("Authorization", authHeader)
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		// the port changes on every client restart
		client.Disconnect()
		return fmt.Errorf("%w: %v", ErrLeagueNotRunning, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", endpoint, errNotFound)
	}
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return fmt.Errorf("unexpected status %d from %s: %s", response.StatusCode, endpoint, string(body))
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}

	return nil
}
