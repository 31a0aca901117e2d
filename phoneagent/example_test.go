package phoneagent_test

import (
	"context"
	"fmt"

	"github.com/spance/iphone-use-mcp/constants"
	"github.com/spance/iphone-use-mcp/phoneagent"
	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/phoneagent/helper"
)

// logSession is a DeviceSession that only prints what it is asked to do.
type logSession struct{}

func (logSession) Tap(ctx context.Context, x, y float64) error {
	fmt.Printf("tap %v,%v\n", x, y)
	return nil
}

func (logSession) GetScreenshot(ctx context.Context) ([]byte, error) { return nil, nil }

func (logSession) GetPageSource(ctx context.Context) (string, error) { return "", nil }

func (logSession) GetWindowRect(ctx context.Context) (*definitions.WindowRect, error) {
	return &definitions.WindowRect{Width: 390, Height: 844}, nil
}

func (logSession) ListApps(ctx context.Context, category definitions.AppCategory) (map[string]definitions.AppInfo, error) {
	return nil, nil
}

func (logSession) ActivateApp(ctx context.Context, bundleID string) error {
	fmt.Printf("activate %s\n", bundleID)
	return nil
}

func (logSession) PerformKeyActions(ctx context.Context, actions []definitions.KeyAction) error {
	fmt.Printf("%d key actions\n", len(actions))
	return nil
}

func (logSession) ReleaseActions(ctx context.Context) error { return nil }

// A custom DeviceSession can be plugged in through a ConnectorFunc.
func ExampleDispatcher_Execute() {
	connector := phoneagent.ConnectorFunc(func(ctx context.Context, caps definitions.Capabilities) (phoneagent.DeviceSession, error) {
		return logSession{}, nil
	})
	manager := phoneagent.NewSessionManager(&definitions.Config{DeviceUDID: "00008110-000A1234"}, connector, nil)
	dispatcher := phoneagent.NewDispatcher(manager, nil)

	ctx := context.Background()
	fmt.Println(helper.EnvelopeText(dispatcher.Execute(ctx, constants.ToolOpenAppByBundleID, helper.Args{"bundleId": "Safari"})))
	fmt.Println(helper.EnvelopeText(dispatcher.Execute(ctx, constants.ToolInputByKeyboard, helper.Args{"text": "hi"})))
	fmt.Println(helper.EnvelopeText(dispatcher.Execute(ctx, constants.ToolClickElementByCoordinates, helper.Args{"x": 195, "y": 422})))
	// Output:
	// activate com.apple.mobilesafari
	// open com.apple.mobilesafari success
	// 4 key actions
	// input hi success
	// tap 195,422
	// click at 195, 422 of the screen success
}
