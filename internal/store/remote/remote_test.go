package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/store"
)

// fakeTable is a minimal PostgREST stand-in keyed by chapter id.
type fakeTable struct {
	mu       sync.Mutex
	rows     map[string]book.Chapter
	requests []*http.Request
}

func newFakeTable(t *testing.T) (*fakeTable, *Store) {
	t.Helper()
	ft := &fakeTable{rows: make(map[string]book.Chapter)}
	srv := httptest.NewServer(ft)
	t.Cleanup(srv.Close)

	s, err := New(Config{URL: srv.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(777) }
	return ft, s
}

func (ft *fakeTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.requests = append(ft.requests, r)

	if r.URL.Path != "/rest/v1/chapters" {
		http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
		return
	}
	if r.Header.Get("apikey") != "anon-key" || r.Header.Get("Authorization") != "Bearer anon-key" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Invalid API key","hint":"check key"}`)
		return
	}

	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
	switch r.Method {
	case http.MethodGet:
		out := []book.Chapter{}
		for _, ch := range ft.rows {
			if id == "" || ch.ID == id {
				out = append(out, ch)
			}
		}
		json.NewEncoder(w).Encode(out)
	case http.MethodPost:
		var ch book.Chapter
		if err := json.NewDecoder(r.Body).Decode(&ch); err != nil {
			http.Error(w, `{"message":"bad json"}`, http.StatusBadRequest)
			return
		}
		ft.rows[ch.ID] = ch
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		delete(ft.rows, id)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPatch:
		var patch map[string]int64
		json.NewDecoder(r.Body).Decode(&patch)
		if ch, ok := ft.rows[id]; ok {
			ch.Number = int(patch["number"])
			ch.UpdatedAt = patch["updated_at"]
			ft.rows[id] = ch
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (ft *fakeTable) last() *http.Request {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.requests[len(ft.requests)-1]
}

func TestNew_NotConfigured(t *testing.T) {
	_, err := New(Config{URL: "https://x.supabase.co"})
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(Config{APIKey: "key"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestStore_CRUD(t *testing.T) {
	ft, s := newFakeTable(t)
	ctx := context.Background()

	require.Equal(t, BackendName, s.Backend())

	require.NoError(t, s.Upsert(ctx, book.Chapter{ID: "b", Number: 2, Title: "Second"}))
	require.NoError(t, s.Upsert(ctx, book.Chapter{ID: "a", Number: 1, Title: "First"}))

	post := ft.last()
	require.Equal(t, http.MethodPost, post.Method)
	require.Equal(t, "id", post.URL.Query().Get("on_conflict"))
	require.Contains(t, post.Header.Get("Prefer"), "resolution=merge-duplicates")

	chapters, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	require.Equal(t, "a", chapters[0].ID)
	require.Equal(t, "number.asc", ft.last().URL.Query().Get("order"))

	require.NoError(t, s.Upsert(ctx, book.Chapter{ID: "a", Number: 1, Title: "First, revised"}))
	ch, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "First, revised", ch.Title)

	require.NoError(t, s.Reorder(ctx, "a", 5))
	require.Equal(t, http.MethodPatch, ft.last().Method)
	ch, err = s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 5, ch.Number)
	require.Equal(t, int64(777), ch.UpdatedAt)

	require.NoError(t, s.Delete(ctx, "a"))
	require.Equal(t, "eq.a", ft.last().URL.Query().Get("id"))

	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Close())
}

func TestStore_APIError(t *testing.T) {
	_, s := newFakeTable(t)
	s.apiKey = "wrong"

	_, err := s.List(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid API key", apiErr.Message)
	require.Contains(t, apiErr.Error(), "401")
}

func TestStore_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := New(Config{URL: url, APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)

	_, err = s.List(context.Background())
	require.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{`{"message":"duplicate key"}`, "duplicate key"},
		{`{"error":"invalid_grant"}`, "invalid_grant"},
		{`{"hint":"try again"}`, "try again"},
		{`{"code":"42P01"}`, `{"code":"42P01"}`},
		{"gateway timeout", "gateway timeout"},
		{"", "empty response"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, errorMessage([]byte(tc.body)))
		})
	}
}
