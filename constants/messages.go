package constants

import (
	"github.com/valyala/fasttemplate"
)

// Result message templates, rendered with {placeholders}.
const (
	MsgClickSuccess = "click at {x}, {y} of the screen success"
	MsgClickFailed  = "click at {x}, {y} of the screen failed, error: {error}"

	MsgSnapshotFailed = "get screen snapshot failed, error: {error}"

	MsgAppListFailed = "get app list failed, error: {error}"

	MsgOpenAppSuccess = "open {bundleId} success"
	MsgOpenAppFailed  = "open app {bundleId} by bundle id failed, error: {error}"

	MsgInputSuccess = "input {text} success"
	MsgInputFailed  = "input {text} by keyboard failed, error: {error}"

	MsgUnknownAction = "unknown action {action}"
)

// Render fills a message template. Values must be strings.
func Render(template string, values map[string]string) string {
	m := make(map[string]interface{}, len(values))
	for k, v := range values {
		m[k] = v
	}
	return fasttemplate.ExecuteString(template, "{", "}", m)
}
