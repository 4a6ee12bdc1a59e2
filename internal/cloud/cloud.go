package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// BackupFilename is the well-known object name both app generations use, so
// a restore always finds the latest copy.
const BackupFilename = "emicollect_backup.json"

var ErrNotFound = errors.New("cloud object not found")

// Storage is the credential-gated remote file store holding off-device
// backup copies. Callers must treat failures as warnings; cloud trouble
// never blocks or rolls back local work.
type Storage interface {
	Upload(ctx context.Context, name string, data []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
}

// Client talks to a plain HTTP file endpoint: PUT/GET <base>/<name> with a
// token header.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) objectURL(name string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(name))
}

func (c *Client) Upload(ctx context.Context, name string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(name), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code %d uploading %s", resp.StatusCode, name)
	}

	return nil
}

func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d downloading %s", resp.StatusCode, name)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return data, nil
}
