package ios

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
)

// keyboardSourceID names the key input source used for typing.
const keyboardSourceID = "kbd"

// Session is one live WebDriver session against the XCUITest driver.
type Session struct {
	ID           string
	Capabilities map[string]any

	client  *resty.Client
	timeout time.Duration
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.ID + suffix
}

type executeRequest struct {
	Script string `json:"script"`
	Args   []any  `json:"args"`
}

// Execute runs an Appium "mobile:" extension command.
func (s *Session) Execute(ctx context.Context, script string, args map[string]any) (any, error) {
	body := executeRequest{Script: script, Args: []any{}}
	if args != nil {
		body.Args = append(body.Args, args)
	}
	resp, err := call[any](ctx, s.client, s.timeout, http.MethodPost, s.path("/execute/sync"), body)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func (s *Session) Tap(ctx context.Context, x, y float64) error {
	_, err := s.Execute(ctx, "mobile: tap", map[string]any{"x": x, "y": y})
	return err
}

// GetScreenshot returns the raw PNG bytes of the current screen.
func (s *Session) GetScreenshot(ctx context.Context) ([]byte, error) {
	resp, err := call[string](ctx, s.client, s.timeout, http.MethodGet, s.path("/screenshot"), nil)
	if err != nil {
		return nil, err
	}
	encoded := strings.NewReplacer("\n", "", "\r", "").Replace(resp.Value)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return data, nil
}

func (s *Session) GetPageSource(ctx context.Context) (string, error) {
	resp, err := call[string](ctx, s.client, s.timeout, http.MethodGet, s.path("/source"), nil)
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

func (s *Session) GetWindowRect(ctx context.Context) (*definitions.WindowRect, error) {
	resp, err := call[definitions.WindowRect](ctx, s.client, s.timeout, http.MethodGet, s.path("/window/rect"), nil)
	if err != nil {
		return nil, err
	}
	return &resp.Value, nil
}

// ListApps returns the installed apps of one category keyed by bundle id.
// A reply that is not an object yields no apps.
func (s *Session) ListApps(ctx context.Context, category definitions.AppCategory) (map[string]definitions.AppInfo, error) {
	value, err := s.Execute(ctx, "mobile: listApps", map[string]any{"applicationType": string(category)})
	if err != nil {
		return nil, err
	}

	apps := map[string]definitions.AppInfo{}
	raw, ok := value.(map[string]any)
	if !ok {
		return apps, nil
	}
	for bundleID, info := range raw {
		m, _ := info.(map[string]any)
		apps[bundleID] = m
	}
	return apps, nil
}

func (s *Session) ActivateApp(ctx context.Context, bundleID string) error {
	_, err := s.Execute(ctx, "mobile: activateApp", map[string]any{"bundleId": bundleID})
	return err
}

type inputSource struct {
	Type    string                  `json:"type"`
	ID      string                  `json:"id"`
	Actions []definitions.KeyAction `json:"actions"`
}

type actionsRequest struct {
	Actions []inputSource `json:"actions"`
}

// PerformKeyActions submits the actions as a single key input source.
func (s *Session) PerformKeyActions(ctx context.Context, actions []definitions.KeyAction) error {
	if actions == nil {
		actions = []definitions.KeyAction{}
	}
	body := actionsRequest{
		Actions: []inputSource{{Type: "key", ID: keyboardSourceID, Actions: actions}},
	}
	_, err := call[any](ctx, s.client, s.timeout, http.MethodPost, s.path("/actions"), body)
	return err
}

func (s *Session) ReleaseActions(ctx context.Context) error {
	_, err := call[any](ctx, s.client, s.timeout, http.MethodDelete, s.path("/actions"), nil)
	return err
}

// Delete ends the session on the server.
func (s *Session) Delete(ctx context.Context) error {
	_, err := call[any](ctx, s.client, s.timeout, http.MethodDelete, s.path(""), nil)
	return err
}
