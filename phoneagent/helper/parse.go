package helper

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/utils"
)

// Args are the decoded arguments of one action call.
type Args map[string]any

// RequireNumber returns a finite number argument.
func RequireNumber(args Args, key string) (float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, ok := utils.AnyToFloat64(raw)
	if !ok {
		return 0, fmt.Errorf("invalid %s: expected a number, got %T", key, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s: must be a finite number", key)
	}
	return f, nil
}

// RequireString returns a string argument. Empty strings are rejected unless allowEmpty.
func RequireString(args Args, key string, allowEmpty bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("missing %s", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invalid %s: expected a string, got %T", key, raw)
	}
	if !allowEmpty && s == "" {
		return "", fmt.Errorf("invalid %s: must not be empty", key)
	}
	return s, nil
}

// BuildKeyActions turns text into one keyDown/keyUp pair per code point.
func BuildKeyActions(text string) []definitions.KeyAction {
	return lo.FlatMap([]rune(text), func(r rune, _ int) []definitions.KeyAction {
		ch := string(r)
		return []definitions.KeyAction{
			{Type: definitions.KeyDown, Value: ch},
			{Type: definitions.KeyUp, Value: ch},
		}
	})
}

var displayNameKeys = []string{"name", "displayName", "CFBundleDisplayName", "CFBundleName"}

// ResolveDisplayName takes the first present, non-null name field and falls back to the bundle id.
func ResolveDisplayName(bundleID string, info definitions.AppInfo) string {
	for _, key := range displayNameKeys {
		if v, ok := info[key]; ok && v != nil {
			return utils.AnyToDisplayString(v)
		}
	}
	return bundleID
}

// FormatAppList converts one category of apps into descriptors sorted by bundle id.
func FormatAppList(apps map[string]definitions.AppInfo) []definitions.AppDescriptor {
	result := lo.MapToSlice(apps, func(bundleID string, info definitions.AppInfo) definitions.AppDescriptor {
		return definitions.AppDescriptor{
			DisplayName: ResolveDisplayName(bundleID, info),
			BundleID:    bundleID,
		}
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].BundleID < result[j].BundleID
	})
	return result
}
