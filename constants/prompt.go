package constants

const (
	ServerName    = "iPhone-use"
	ServerVersion = "0.1.0"

	ServerInstructions = `Use this server to use iPhone.`
)

// Tool names exposed over MCP.
const (
	ToolClickElementByCoordinates = "click_element_by_coordinates"
	ToolGetScreenSnapshot         = "get_screen_snapshot"
	ToolGetAppList                = "get_app_list"
	ToolOpenAppByBundleID         = "open_app_by_bundle_id"
	ToolInputByKeyboard           = "input_by_keyboard"
)

const (
	ClickElementTitle       = "Click Element by center coordinates of the target element"
	ClickElementDescription = `Click element by coordinates, x and y are the central coordinates of the target element.

Before calling this tool, you MUST follow these steps, and after completing them, call this tool 'click_element_by_coordinates' to click the center coordinates of the target element:
1. Use get_screen_snapshot to obtain the current screen snapshot, the UI elements on the screen, and the screen size.
2. Locate the target element from the UI elements.
3. Calculate the center coordinates of the target element using its properties: '((x + width/2), (y + height/2))'.
4. Check whether the center coordinates of the target element are within the screen size range. If not, recalculate. If after three attempts the coordinates are still out of bounds, inform the user and stop the process.

You MUST calculate the center coordinates using the properties of the target element. It is strictly forbidden to estimate the center coordinates visually!`

	ScreenSnapshotTitle       = "Get Device Screen Snapshot"
	ScreenSnapshotDescription = `Get the current iPhone screen data.

The response contains the following three parts:
1. The current iPhone screen snapshot, as a base64-encoded PNG image.
2. The UI elements on the current screen, including each element's type, label, coordinates, size, and other properties.
3. The screen size, including the width and height of the current iPhone screen.`

	AppListTitle       = "Get App List"
	AppListDescription = "List installed apps and return an json array string of {displayName: string, bundleId: string}"

	OpenAppTitle       = "Open App by Bundle Id"
	OpenAppDescription = "Open app by bundle id. Well-known app names such as 'Safari' or 'Settings' are also accepted."

	InputTitle       = "Input by Keyboard"
	InputDescription = "Input by keyboard. The text is typed into the currently focused field one character at a time."
)
