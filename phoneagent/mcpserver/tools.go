package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spance/iphone-use-mcp/constants"
)

// Coordinate parameter (reusable)
func coordinateParam(name, description string) mcp.ToolOption {
	return mcp.WithNumber(name, mcp.Required(), mcp.Description(description))
}

// String parameter (reusable)
func stringParam(name, description string) mcp.ToolOption {
	return mcp.WithString(name, mcp.Required(), mcp.Description(description))
}

// Tools returns every tool the server registers, in a stable order.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		createClickTool(),
		createSnapshotTool(),
		createAppListTool(),
		createOpenAppTool(),
		createInputTool(),
	}
}

func createClickTool() mcp.Tool {
	return mcp.NewTool(constants.ToolClickElementByCoordinates,
		mcp.WithTitleAnnotation(constants.ClickElementTitle),
		mcp.WithDescription(constants.ClickElementDescription),
		coordinateParam("x", "x coordinate of the element, in screen points"),
		coordinateParam("y", "y coordinate of the element, in screen points"),
	)
}

func createSnapshotTool() mcp.Tool {
	return mcp.NewTool(constants.ToolGetScreenSnapshot,
		mcp.WithTitleAnnotation(constants.ScreenSnapshotTitle),
		mcp.WithDescription(constants.ScreenSnapshotDescription),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func createAppListTool() mcp.Tool {
	return mcp.NewTool(constants.ToolGetAppList,
		mcp.WithTitleAnnotation(constants.AppListTitle),
		mcp.WithDescription(constants.AppListDescription),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func createOpenAppTool() mcp.Tool {
	return mcp.NewTool(constants.ToolOpenAppByBundleID,
		mcp.WithTitleAnnotation(constants.OpenAppTitle),
		mcp.WithDescription(constants.OpenAppDescription),
		stringParam("bundleId", "bundle id of the app, e.g. com.apple.Preferences"),
	)
}

func createInputTool() mcp.Tool {
	return mcp.NewTool(constants.ToolInputByKeyboard,
		mcp.WithTitleAnnotation(constants.InputTitle),
		mcp.WithDescription(constants.InputDescription),
		stringParam("text", "text to type into the focused field"),
	)
}
