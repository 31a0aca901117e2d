package ios

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

type fakeAppium struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeAppium) record(r *http.Request) map[string]any {
	var body map[string]any
	data, _ := io.ReadAll(r.Body)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	f.mu.Unlock()
	return body
}

func (f *fakeAppium) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func writeValue(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"value": value})
}

func (f *fakeAppium) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := f.record(r)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/session":
		writeValue(w, http.StatusOK, map[string]any{
			"sessionId":    "s1",
			"capabilities": map[string]any{"platformName": "iOS"},
		})
	case r.URL.Path == "/session/s1/execute/sync":
		switch body["script"] {
		case "mobile: listApps":
			args := body["args"].([]any)[0].(map[string]any)
			if args["applicationType"] == "System" {
				writeValue(w, http.StatusInternalServerError, map[string]any{
					"error":   "unknown error",
					"message": "listing system apps is not supported",
				})
				return
			}
			writeValue(w, http.StatusOK, map[string]any{
				"com.tencent.xin": map[string]any{"CFBundleDisplayName": "WeChat"},
			})
		default:
			writeValue(w, http.StatusOK, nil)
		}
	case r.URL.Path == "/session/s1/screenshot":
		writeValue(w, http.StatusOK, base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	case r.URL.Path == "/session/s1/source":
		writeValue(w, http.StatusOK, "<XCUIElementTypeApplication/>")
	case r.URL.Path == "/session/s1/window/rect":
		writeValue(w, http.StatusOK, map[string]any{"x": 0, "y": 0, "width": 390, "height": 844})
	case r.URL.Path == "/session/s1/actions", r.URL.Path == "/session/s1":
		writeValue(w, http.StatusOK, nil)
	case r.URL.Path == "/status":
		writeValue(w, http.StatusOK, map[string]any{"ready": true})
	default:
		writeValue(w, http.StatusNotFound, map[string]any{"error": "unknown command", "message": r.URL.Path})
	}
}

func newTestSession(t *testing.T) (*Session, *fakeAppium) {
	t.Helper()
	fake := &fakeAppium{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	connector := NewConnector(srv.URL, 5*time.Second)
	session, err := connector.CreateSession(context.Background(), definitions.Capabilities{
		PlatformName:           "iOS",
		AutomationName:         "XCUITest",
		UDID:                   "udid-1",
		IncludeSafariInWebview: true,
	})
	require.NoError(t, err)
	return session, fake
}

func TestCreateSession(t *testing.T) {
	session, fake := newTestSession(t)

	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, "iOS", session.Capabilities["platformName"])

	req := fake.requests[0]
	assert.Equal(t, "/session", req.Path)
	caps := req.Body["capabilities"].(map[string]any)
	assert.Equal(t, []any{map[string]any{}}, caps["firstMatch"])
	always := caps["alwaysMatch"].(map[string]any)
	assert.Equal(t, "iOS", always["platformName"])
	assert.Equal(t, "XCUITest", always["appium:automationName"])
	assert.Equal(t, "udid-1", always["appium:udid"])
	assert.Equal(t, true, always["appium:includeSafariInWebviews"])
	assert.NotContains(t, always, "appium:deviceName")
}

func TestCreateSessionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, http.StatusInternalServerError, map[string]any{
			"error":   "session not created",
			"message": "device udid-1 is not connected",
		})
	}))
	defer srv.Close()

	_, err := NewConnector(srv.URL, 0).CreateSession(context.Background(), definitions.Capabilities{UDID: "udid-1"})
	require.Error(t, err)

	var wdErr *WebDriverError
	require.True(t, errors.As(err, &wdErr))
	assert.Equal(t, http.StatusInternalServerError, wdErr.StatusCode)
	assert.Equal(t, "session not created", wdErr.Code)
	assert.Contains(t, err.Error(), "device udid-1 is not connected")
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewConnector(srv.URL, 0).Status(context.Background())
	require.Error(t, err)

	var wdErr *WebDriverError
	require.True(t, errors.As(err, &wdErr))
	assert.Equal(t, http.StatusBadGateway, wdErr.StatusCode)
	assert.Equal(t, "upstream down", wdErr.Message)
}

func TestTap(t *testing.T) {
	session, fake := newTestSession(t)

	require.NoError(t, session.Tap(context.Background(), 100.5, 2000))

	req := fake.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/session/s1/execute/sync", req.Path)
	assert.Equal(t, "mobile: tap", req.Body["script"])
	assert.Equal(t, []any{map[string]any{"x": 100.5, "y": 2000.0}}, req.Body["args"])
}

func TestScreenReads(t *testing.T) {
	session, _ := newTestSession(t)
	ctx := context.Background()

	png, err := session.GetScreenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), png)

	source, err := session.GetPageSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<XCUIElementTypeApplication/>", source)

	rect, err := session.GetWindowRect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 390.0, rect.Width)
	assert.Equal(t, 844.0, rect.Height)
}

func TestListApps(t *testing.T) {
	session, fake := newTestSession(t)
	ctx := context.Background()

	apps, err := session.ListApps(ctx, definitions.UserApps)
	require.NoError(t, err)
	assert.Equal(t, map[string]definitions.AppInfo{
		"com.tencent.xin": {"CFBundleDisplayName": "WeChat"},
	}, apps)
	assert.Equal(t, []any{map[string]any{"applicationType": "User"}}, fake.last().Body["args"])

	_, err = session.ListApps(ctx, definitions.SystemApps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing system apps is not supported")
}

func TestActivateApp(t *testing.T) {
	session, fake := newTestSession(t)

	require.NoError(t, session.ActivateApp(context.Background(), "com.apple.Preferences"))

	req := fake.last()
	assert.Equal(t, "mobile: activateApp", req.Body["script"])
	assert.Equal(t, []any{map[string]any{"bundleId": "com.apple.Preferences"}}, req.Body["args"])
}

func TestKeyActions(t *testing.T) {
	session, fake := newTestSession(t)
	ctx := context.Background()

	err := session.PerformKeyActions(ctx, []definitions.KeyAction{
		{Type: definitions.KeyDown, Value: "A"},
		{Type: definitions.KeyUp, Value: "A"},
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/session/s1/actions", req.Path)
	assert.Equal(t, []any{map[string]any{
		"type": "key",
		"id":   "kbd",
		"actions": []any{
			map[string]any{"type": "keyDown", "value": "A"},
			map[string]any{"type": "keyUp", "value": "A"},
		},
	}}, req.Body["actions"])

	require.NoError(t, session.ReleaseActions(ctx))
	req = fake.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/session/s1/actions", req.Path)
}

func TestCommandTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" {
			writeValue(w, http.StatusOK, map[string]any{"sessionId": "s1"})
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeValue(w, http.StatusOK, nil)
	}))
	defer srv.Close()

	session, err := NewConnector(srv.URL, 50*time.Millisecond).CreateSession(context.Background(), definitions.Capabilities{UDID: "u"})
	require.NoError(t, err)

	err = session.Tap(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(&fakeAppium{})
	defer srv.Close()

	status, err := NewConnector(srv.URL, time.Second).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, status["ready"])
}
