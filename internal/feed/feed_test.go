package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Arakoon news</title>
    <link>http://www.arakoon.org/</link>
    <description>Release announcements</description>
    <item>
      <title>Arakoon 1.0 released</title>
      <link>http://www.arakoon.org/news/1.0</link>
    </item>
    <item>
      <title>Arakoon 0.9 released</title>
      <link>http://www.arakoon.org/news/0.9</link>
    </item>
  </channel>
</rss>`

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(server.Close)

	f := NewHTTPFetcher(time.Second, 0)
	parsed, err := f.Fetch(t.Context(), server.URL+"/feed")
	require.NoError(t, err)
	require.Equal(t, "Arakoon news", parsed.Title)
	require.Len(t, parsed.Items, 2)
	require.Equal(t, "Arakoon 1.0 released", parsed.Items[0].Title)
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := NewHTTPFetcher(time.Second, 0).Fetch(t.Context(), server.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 500")
}

func TestHTTPFetcher_MalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	t.Cleanup(server.Close)

	_, err := NewHTTPFetcher(time.Second, 0).Fetch(t.Context(), server.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse feed")
}

func TestHTTPFetcher_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(server.Close)

	_, err := NewHTTPFetcher(time.Second, 64).Fetch(t.Context(), server.URL)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestHTTPFetcher_BlocksCrossHostRedirect(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	t.Cleanup(other.Close)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 127.0.0.1 and localhost differ as hosts even though they resolve alike.
		target := strings.Replace(other.URL, "127.0.0.1", "localhost", 1)
		http.Redirect(w, r, target, http.StatusFound)
	}))
	t.Cleanup(server.Close)

	_, err := NewHTTPFetcher(time.Second, 0).Fetch(t.Context(), server.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "redirect to different host blocked")
}

func TestValidateURI(t *testing.T) {
	require.NoError(t, ValidateURI("http://www.arakoon.org/feed"))
	require.NoError(t, ValidateURI("https://example.com/rss.xml"))
	require.Error(t, ValidateURI("ftp://example.com/feed"))
	require.Error(t, ValidateURI("file:///etc/passwd"))
	require.Error(t, ValidateURI("/relative/feed"))
}

func TestStatic(t *testing.T) {
	want := &gofeed.Feed{Title: "stub"}
	got, err := Static{Feed: want}.Fetch(t.Context(), "ignored")
	require.NoError(t, err)
	require.Same(t, want, got)

	got, err = Static{}.Fetch(t.Context(), "")
	require.NoError(t, err)
	require.Nil(t, got)

	boom := errors.New("boom")
	_, err = Static{Err: boom}.Fetch(t.Context(), "")
	require.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = Static{Feed: want}.Fetch(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
}
