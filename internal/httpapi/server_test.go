package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkassist/internal/intent"
	"talkassist/internal/reminder"
)

var testClock = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

type stubChecker struct{ online bool }

func (s stubChecker) Online(context.Context) bool { return s.online }

func newTestServer(t *testing.T, online bool) (http.Handler, *reminder.Manager) {
	t.Helper()

	store, err := reminder.NewSQLiteStore(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mgr := reminder.NewManager(store, reminder.WithClock(func() time.Time { return testClock }))
	require.NoError(t, mgr.Load())

	return NewServer(mgr, intent.NewRouter(mgr), stubChecker{online: online}), mgr
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	rec := doRequest(t, srv, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Backend)
	assert.True(t, resp.Internet)
	assert.True(t, resp.Online)
	assert.Equal(t, "online", resp.Mode)
}

func TestPingOffline(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	rec := doRequest(t, srv, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Internet)
	assert.Equal(t, "offline", resp.Mode)
}

func TestSetReminder(t *testing.T) {
	t.Parallel()

	srv, mgr := newTestServer(t, true)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/reminders",
		`{"text": "remind me to call mom in 30 minutes"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("content-type"))

	var resp confirmationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Reminder set for today at 10:30 AM: call mom", resp.Confirmation)

	require.Len(t, mgr.List(), 1)
}

func TestSetReminderErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)

	cases := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"invalid json", `{not json`, http.StatusBadRequest, "invalid JSON body"},
		{"empty text", `{"text": "  "}`, http.StatusBadRequest, "text is required"},
		{"no time", `{"text": "remind me to do something"}`, http.StatusBadRequest, "could not understand the time"},
		{"past time", `{"text": "remind me to stretch at 9am today"}`, http.StatusBadRequest, "in the past"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/v1/reminders", tc.body)
			assert.Equal(t, tc.wantCode, rec.Code)

			var resp errorResp
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tc.wantErr)
		})
	}
}

func TestListRemindersEmpty(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/reminders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reminders": []}`, rec.Body.String())
}

func TestListReminders(t *testing.T) {
	t.Parallel()

	srv, mgr := newTestServer(t, true)
	_, err := mgr.Set("remind me to call mom in 30 minutes")
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/reminders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reminders, 1)
	assert.Equal(t, 1, resp.Reminders[0].Number)
	assert.Equal(t, "call mom", resp.Reminders[0].Text)
	assert.True(t, resp.Reminders[0].DueAt.Equal(testClock.Add(30*time.Minute)))
}

func TestDeleteReminder(t *testing.T) {
	t.Parallel()

	srv, mgr := newTestServer(t, true)
	_, err := mgr.Set("remind me to call mom in 30 minutes")
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/reminders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())
	assert.Empty(t, mgr.List())
}

func TestDeleteReminderInvalid(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/reminders/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "invalid reminder number")

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/reminders/two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"message": "what time is it"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response": "The current time is 10:00 AM"}`, rec.Body.String())
}

func TestAskEmptyMessage(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", `{"message": "  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response": ""}`, rec.Body.String())
}

func TestAskSetsReminder(t *testing.T) {
	t.Parallel()

	srv, mgr := newTestServer(t, true)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask",
		`{"message": "remind me to water the plants in 2 hours"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp askResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "Reminder set for")
	require.Len(t, mgr.List(), 1)
}
