// Package remote stores chapters in a PostgREST table such as the one a
// Supabase project exposes under /rest/v1.
//
// Required table:
//
//	create table chapters (
//	  id          text primary key,
//	  number      integer not null,
//	  title       text    not null,
//	  subtitle    text    not null default '',
//	  icon        text    not null default '🌿',
//	  body        text    not null default '',
//	  created_at  bigint  not null,
//	  updated_at  bigint  not null
//	);
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/store"
)

const (
	// DefaultTable is the default chapter table name.
	DefaultTable = "chapters"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second
	// BackendName identifies this store.
	BackendName = "remote"

	restPath = "/rest/v1/"
)

// ErrNotConfigured is returned by New when the URL or key is missing.
var ErrNotConfigured = errors.New("remote store not configured (set SUPABASE_URL and SUPABASE_ANON_KEY or store.remote in config)")

// Config holds the configuration for the remote store.
type Config struct {
	URL     string
	APIKey  string
	Table   string
	Timeout time.Duration
}

// APIError is a non-2xx response from the remote table.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote store: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Store implements store.Store over HTTP.
type Store struct {
	endpoint string
	apiKey   string
	client   *http.Client
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates a remote store.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Store{
		endpoint: strings.TrimRight(cfg.URL, "/") + restPath + url.PathEscape(table),
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
	}, nil
}

// Backend returns the backend name.
func (s *Store) Backend() string {
	return BackendName
}

// List fetches all chapters ordered by number.
func (s *Store) List(ctx context.Context) ([]book.Chapter, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "number.asc")

	var chapters []book.Chapter
	if err := s.do(ctx, http.MethodGet, q, nil, "", &chapters); err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []book.Chapter{}
	}
	book.Sort(chapters)
	return chapters, nil
}

// Get fetches one chapter by id.
func (s *Store) Get(ctx context.Context, id string) (*book.Chapter, error) {
	q := idFilter(id)
	q.Set("select", "*")

	var chapters []book.Chapter
	if err := s.do(ctx, http.MethodGet, q, nil, "", &chapters); err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return &chapters[0], nil
}

// Upsert inserts or replaces a chapter, resolving conflicts on id.
func (s *Store) Upsert(ctx context.Context, ch book.Chapter) error {
	q := url.Values{}
	q.Set("on_conflict", "id")
	return s.do(ctx, http.MethodPost, q, ch, "resolution=merge-duplicates,return=minimal", nil)
}

// Delete removes a chapter by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, idFilter(id), nil, "return=minimal", nil)
}

// Reorder sets a chapter's number and bumps its update time.
func (s *Store) Reorder(ctx context.Context, id string, number int) error {
	patch := struct {
		Number    int   `json:"number"`
		UpdatedAt int64 `json:"updated_at"`
	}{number, s.now().UnixMilli()}
	return s.do(ctx, http.MethodPatch, idFilter(id), patch, "return=minimal", nil)
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func idFilter(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

func (s *Store) do(ctx context.Context, method string, q url.Values, body any, prefer string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+"?"+q.Encode(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote store request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts a readable message from a PostgREST error body.
func errorMessage(data []byte) string {
	if gjson.ValidBytes(data) {
		for _, key := range []string{"message", "error", "hint"} {
			if v := gjson.GetBytes(data, key); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "empty response"
	}
	return msg
}
