package ios

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
)

// Connector opens WebDriver sessions on an Appium server.
type Connector struct {
	client         *resty.Client
	commandTimeout time.Duration
}

// NewConnector targets the Appium server at baseURL. commandTimeout bounds
// every command issued on the sessions it creates; 0 disables it.
func NewConnector(baseURL string, commandTimeout time.Duration) *Connector {
	return &Connector{
		client:         NewHTTPClient(baseURL),
		commandTimeout: commandTimeout,
	}
}

type newSessionRequest struct {
	Capabilities struct {
		FirstMatch  []map[string]any `json:"firstMatch"`
		AlwaysMatch map[string]any   `json:"alwaysMatch"`
	} `json:"capabilities"`
}

type newSessionValue struct {
	SessionID    string         `json:"sessionId"`
	Capabilities map[string]any `json:"capabilities"`
}

// BuildCapabilities renders the W3C alwaysMatch capability set.
func BuildCapabilities(caps definitions.Capabilities) map[string]any {
	alwaysMatch := map[string]any{
		"platformName":                   caps.PlatformName,
		"appium:automationName":          caps.AutomationName,
		"appium:includeSafariInWebviews": caps.IncludeSafariInWebview,
		"appium:udid":                    caps.UDID,
		"appium:newCommandTimeout":       caps.NewCommandTimeout,
	}
	if caps.DeviceName != "" {
		alwaysMatch["appium:deviceName"] = caps.DeviceName
	}
	if caps.PlatformVersion != "" {
		alwaysMatch["appium:platformVersion"] = caps.PlatformVersion
	}
	return alwaysMatch
}

// CreateSession performs the one-time handshake with the device.
func (c *Connector) CreateSession(ctx context.Context, caps definitions.Capabilities) (*Session, error) {
	var body newSessionRequest
	body.Capabilities.FirstMatch = []map[string]any{{}}
	body.Capabilities.AlwaysMatch = BuildCapabilities(caps)

	log.Info().Str("udid", caps.UDID).Str("automation", caps.AutomationName).Msg("creating device session")

	// Session creation may build and launch WebDriverAgent, so only ctx bounds it.
	resp, err := call[newSessionValue](ctx, c.client, 0, http.MethodPost, "/session", body)
	if err != nil {
		return nil, err
	}

	sessionID := resp.Value.SessionID
	if sessionID == "" {
		sessionID = resp.SessionID
	}
	if sessionID == "" {
		return nil, errors.New("webdriver returned no session id")
	}

	log.Info().Str("session_id", sessionID).Msg("device session created")

	return &Session{
		ID:           sessionID,
		Capabilities: resp.Value.Capabilities,
		client:       c.client,
		timeout:      c.commandTimeout,
	}, nil
}

// Status queries the server readiness endpoint.
func (c *Connector) Status(ctx context.Context) (map[string]any, error) {
	resp, err := call[map[string]any](ctx, c.client, c.commandTimeout, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, fmt.Errorf("appium server not reachable: %w", err)
	}
	return resp.Value, nil
}
