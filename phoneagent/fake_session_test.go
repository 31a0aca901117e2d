package phoneagent

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
)

type fakeSession struct {
	mu sync.Mutex

	calls      []string
	taps       [][2]float64
	activated  []string
	keyActions [][]definitions.KeyAction

	screenshot []byte
	source     string
	rect       definitions.WindowRect
	apps       map[definitions.AppCategory]map[string]definitions.AppInfo

	tapErr        error
	screenshotErr error
	sourceErr     error
	listErr       map[definitions.AppCategory]error
	activateErr   error
	performErr    error
	releaseErr    error
}

func newFakeSession() *fakeSession {
	img := image.NewRGBA(image.Rect(0, 0, 39, 84))
	for y := 0; y < 84; y++ {
		for x := 0; x < 39; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 6), uint8(y * 3), 128, 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)

	return &fakeSession{
		screenshot: buf.Bytes(),
		source:     `<XCUIElementTypeApplication type="XCUIElementTypeApplication" name="Settings" x="0" y="0" width="390" height="844"/>`,
		rect:       definitions.WindowRect{Width: 390, Height: 844},
		apps:       map[definitions.AppCategory]map[string]definitions.AppInfo{},
		listErr:    map[definitions.AppCategory]error{},
	}
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSession) Tap(ctx context.Context, x, y float64) error {
	f.record("tap")
	f.mu.Lock()
	f.taps = append(f.taps, [2]float64{x, y})
	f.mu.Unlock()
	return f.tapErr
}

func (f *fakeSession) GetScreenshot(ctx context.Context) ([]byte, error) {
	f.record("screenshot")
	return f.screenshot, f.screenshotErr
}

func (f *fakeSession) GetPageSource(ctx context.Context) (string, error) {
	f.record("source")
	return f.source, f.sourceErr
}

func (f *fakeSession) GetWindowRect(ctx context.Context) (*definitions.WindowRect, error) {
	f.record("rect")
	rect := f.rect
	return &rect, nil
}

func (f *fakeSession) ListApps(ctx context.Context, category definitions.AppCategory) (map[string]definitions.AppInfo, error) {
	f.record("listApps:" + string(category))
	if err := f.listErr[category]; err != nil {
		return nil, err
	}
	return f.apps[category], nil
}

func (f *fakeSession) ActivateApp(ctx context.Context, bundleID string) error {
	f.record("activate")
	f.mu.Lock()
	f.activated = append(f.activated, bundleID)
	f.mu.Unlock()
	return f.activateErr
}

func (f *fakeSession) PerformKeyActions(ctx context.Context, actions []definitions.KeyAction) error {
	f.record("perform")
	f.mu.Lock()
	f.keyActions = append(f.keyActions, actions)
	f.mu.Unlock()
	return f.performErr
}

func (f *fakeSession) ReleaseActions(ctx context.Context) error {
	f.record("release")
	return f.releaseErr
}

// staticProvider always hands out the same session or error.
type staticProvider struct {
	session DeviceSession
	err     error
}

func (p staticProvider) GetSession(ctx context.Context) (DeviceSession, error) {
	return p.session, p.err
}
