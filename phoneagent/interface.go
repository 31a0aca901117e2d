package phoneagent

import (
	"context"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/phoneagent/ios"
)

// DeviceSession is one live automation connection to the device.
type DeviceSession interface {
	Tap(ctx context.Context, x, y float64) error
	GetScreenshot(ctx context.Context) ([]byte, error)
	GetPageSource(ctx context.Context) (string, error)
	GetWindowRect(ctx context.Context) (*definitions.WindowRect, error)
	ListApps(ctx context.Context, category definitions.AppCategory) (map[string]definitions.AppInfo, error)
	ActivateApp(ctx context.Context, bundleID string) error
	PerformKeyActions(ctx context.Context, actions []definitions.KeyAction) error
	ReleaseActions(ctx context.Context) error
}

// SessionProvider hands out the live session, establishing it on first use.
type SessionProvider interface {
	GetSession(ctx context.Context) (DeviceSession, error)
}

// Connector performs the session handshake.
type Connector interface {
	Connect(ctx context.Context, caps definitions.Capabilities) (DeviceSession, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, caps definitions.Capabilities) (DeviceSession, error)

func (f ConnectorFunc) Connect(ctx context.Context, caps definitions.Capabilities) (DeviceSession, error) {
	return f(ctx, caps)
}

// NewAppiumConnector connects through an Appium server running the XCUITest driver.
func NewAppiumConnector(cfg *definitions.Config) Connector {
	connector := ios.NewConnector(cfg.AppiumURL, cfg.CommandTimeout)
	return ConnectorFunc(func(ctx context.Context, caps definitions.Capabilities) (DeviceSession, error) {
		session, err := connector.CreateSession(ctx, caps)
		if err != nil {
			return nil, err
		}
		return session, nil
	})
}
