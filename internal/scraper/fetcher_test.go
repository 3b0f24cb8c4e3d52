package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTransport serves a scripted sequence of round trip results.
type fakeTransport struct {
	results []roundTripResult
	calls   int
}

func (t *fakeTransport) RoundTrip(ctx context.Context, url string) (Page, error) {
	if t.calls >= len(t.results) {
		return Page{URL: url}, errors.New("unexpected round trip")
	}
	res := t.results[t.calls]
	t.calls++
	if res.page.URL == "" {
		res.page.URL = url
	}
	return res.page, res.err
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// recordingPauser records requested pauses without sleeping.
type recordingPauser struct {
	pauses []time.Duration
}

func (p *recordingPauser) Pause(ctx context.Context, d time.Duration) {
	p.pauses = append(p.pauses, d)
}

func okPage(body string) Page {
	return Page{FinalURL: "https://example.test/x", StatusCode: 200, Body: []byte(body)}
}

func newTestClient(transport Transport, policy RetryPolicy, delay time.Duration) (*Client, *recordingPauser, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	client := NewClient(transport, policy, clock, delay, zap.NewNop())
	pauses := &recordingPauser{}
	client.pause = pauses
	return client, pauses, clock
}

func TestClient_Fetch_Success(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{results: []roundTripResult{
		{page: okPage("<html><body><h1>Chapter 1</h1></body></html>")},
	}}
	client, pauses, _ := newTestClient(transport, NewExponentialRetryPolicy(3, time.Millisecond, time.Second), 0)

	doc, page, err := client.Fetch(context.Background(), "https://example.test/x")
	require.NoError(t, err)
	require.Equal(t, 200, page.StatusCode)
	require.Equal(t, "Chapter 1", doc.Find("h1").Text())
	require.Empty(t, pauses.pauses)
}

func TestClient_Fetch_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	transport := &fakeTransport{results: []roundTripResult{
		{err: boom},
		{err: boom},
		{page: okPage("<html><body>ok</body></html>")},
	}}
	client, pauses, _ := newTestClient(transport, NewExponentialRetryPolicy(3, time.Millisecond, time.Second), 0)

	_, _, err := client.Fetch(context.Background(), "https://example.test/x")
	require.NoError(t, err)
	require.Equal(t, 3, transport.calls)
	require.Len(t, pauses.pauses, 2)
}

func TestClient_Fetch_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	transport := &fakeTransport{results: []roundTripResult{
		{err: boom}, {err: boom}, {err: boom},
	}}
	client, _, _ := newTestClient(transport, NewExponentialRetryPolicy(3, time.Millisecond, time.Second), 0)

	_, _, err := client.Fetch(context.Background(), "https://example.test/x")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, 3, fe.Attempts)
	require.True(t, fe.Transient())
	require.Equal(t, 3, transport.calls)
}

func TestClient_Fetch_NotFoundIsImmediate(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{results: []roundTripResult{
		{page: Page{StatusCode: http.StatusNotFound}, err: errors.New("Not Found")},
	}}
	client, pauses, _ := newTestClient(transport, NewExponentialRetryPolicy(3, time.Millisecond, time.Second), 0)

	_, page, err := client.Fetch(context.Background(), "https://example.test/x")
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, page.StatusCode)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, 1, fe.Attempts)
	require.False(t, fe.Transient())
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, IsNotFound(err))
	require.Empty(t, pauses.pauses)
}

func TestClient_Fetch_HonorsInterRequestDelay(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{results: []roundTripResult{
		{page: okPage("<html></html>")},
		{page: okPage("<html></html>")},
		{page: okPage("<html></html>")},
	}}
	delay := 2 * time.Second
	client, pauses, clock := newTestClient(transport, NewExponentialRetryPolicy(3, time.Millisecond, time.Second), delay)

	ctx := context.Background()
	_, _, err := client.Fetch(ctx, "https://example.test/a")
	require.NoError(t, err)
	// First fetch never waits.
	require.Empty(t, pauses.pauses)

	clock.now = clock.now.Add(500 * time.Millisecond)
	_, _, err = client.Fetch(ctx, "https://example.test/b")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{1500 * time.Millisecond}, pauses.pauses)

	// Enough wall time elapsed, no wait needed.
	clock.now = clock.now.Add(3 * time.Second)
	_, _, err = client.Fetch(ctx, "https://example.test/c")
	require.NoError(t, err)
	require.Len(t, pauses.pauses, 1)
}

func TestNewCollyTransport_RequiresUserAgent(t *testing.T) {
	t.Parallel()

	_, err := NewCollyTransport(FetchConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestCollyTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("<html><body><p>hello</p></body></html>"))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	transport, err := NewCollyTransport(FetchConfig{UserAgent: "novel-scraper-test/1.0", Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		page, err := transport.RoundTrip(context.Background(), server.URL+"/ok")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, page.StatusCode)
		require.Contains(t, string(page.Body), "hello")
	})

	t.Run("not found keeps status", func(t *testing.T) {
		page, err := transport.RoundTrip(context.Background(), server.URL+"/missing")
		require.Error(t, err)
		require.Equal(t, http.StatusNotFound, page.StatusCode)
	})

	t.Run("server error keeps status", func(t *testing.T) {
		page, err := transport.RoundTrip(context.Background(), server.URL+"/boom")
		require.Error(t, err)
		require.Equal(t, http.StatusInternalServerError, page.StatusCode)
	})
}
