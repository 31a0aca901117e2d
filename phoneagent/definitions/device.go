package definitions

// AppCategory selects which installed apps to enumerate.
type AppCategory string

const (
	UserApps   AppCategory = "User"
	SystemApps AppCategory = "System"
)

// AppCategories is the enumeration order used by get_app_list.
var AppCategories = []AppCategory{UserApps, SystemApps}

// AppInfo is the raw metadata the device reports for one installed app.
type AppInfo map[string]any

// AppDescriptor represents one installed application.
type AppDescriptor struct {
	DisplayName string `json:"displayName"`
	BundleID    string `json:"bundleId"`
}

// WindowRect is the device's current window rect.
type WindowRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenSize is the screen-size part of a snapshot.
type ScreenSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenSnapshot is produced fresh on every capture request.
type ScreenSnapshot struct {
	Base64PNG  string
	UIElements string
	Size       ScreenSize
}

type KeyActionType string

const (
	KeyDown KeyActionType = "keyDown"
	KeyUp   KeyActionType = "keyUp"
)

// KeyAction is one step of a keyboard input source.
type KeyAction struct {
	Type  KeyActionType `json:"type"`
	Value string        `json:"value"`
}

// Capabilities describes the session to create.
type Capabilities struct {
	PlatformName           string
	AutomationName         string
	UDID                   string
	DeviceName             string
	PlatformVersion        string
	IncludeSafariInWebview bool
	NewCommandTimeout      int
}
