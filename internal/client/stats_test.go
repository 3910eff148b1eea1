package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(Options{
		BaseURL:        url,
		Timeout:        5 * time.Second,
		MaxRetries:     retries,
		MaxConcurrency: 2,
		RetryDelay:     time.Millisecond,
	})
}

func TestPlayByPlayPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contests/5512345/play_by_play", r.URL.Path)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL, 0).PlayByPlayPage(context.Background(), 5512345)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
}

func TestDaySchedulePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contests/livestream_scoreboards", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "MIH", q.Get("sport_code"))
		assert.Equal(t, "2025", q.Get("academic_year"))
		assert.Equal(t, "3", q.Get("division"))
		assert.Equal(t, "11/09/2024", q.Get("game_date"))
		w.Write([]byte("<html>scoreboard</html>"))
	}))
	defer server.Close()

	date := time.Date(2024, 11, 9, 0, 0, 0, 0, time.UTC)
	body, err := newTestClient(server.URL, 0).DaySchedulePage(context.Background(), "MIH", 3, date)
	require.NoError(t, err)
	assert.Equal(t, "<html>scoreboard</html>", string(body))
}

func TestAcademicYear(t *testing.T) {
	assert.Equal(t, 2025, AcademicYear(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, AcademicYear(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, AcademicYear(time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)))
}

func TestPlayByPlayPage_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("done"))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL, 3).PlayByPlayPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPlayByPlayPage_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).PlayByPlayPage(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "[HTTP 404]")
	assert.Contains(t, se.URL, "/contests/42/play_by_play")
}

func TestPlayByPlayPage_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 2).PlayByPlayPage(context.Background(), 7)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPlayByPlayPage_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(Options{BaseURL: server.URL, MaxRetries: 5, RetryDelay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.PlayByPlayPage(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatusError(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 429}).Retryable())
	assert.True(t, (&StatusError{StatusCode: 504}).Retryable())
	assert.False(t, (&StatusError{StatusCode: 403}).Retryable())
	assert.False(t, (&StatusError{StatusCode: 451}).Retryable())
	assert.Contains(t, (&StatusError{StatusCode: 599, URL: "u"}).Error(), "unhandled status code")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
}

func TestWait_SpacesRequests(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://localhost", RequestDelay: 30 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
