package constants

import (
	_ "embed"
	"errors"
	"sort"
	"sync"

	json "github.com/bytedance/sonic"
)

//go:embed app_aliases.json
var aliasesJSON []byte

var (
	bundle2AliasesMap map[string][]string
	alias2BundleMap   map[string]string
	errLoad           error
	once              = new(sync.Once)
)

// Load loads the iOS bundle id -> aliases mapping from the embedded JSON
func Load() (map[string][]string, error) {
	once.Do(func() {
		bundle2AliasesMap = make(map[string][]string)
		if err := json.Unmarshal(aliasesJSON, &bundle2AliasesMap); err != nil {
			errLoad = errors.Join(err, errors.New("failed to unmarshal embedded app_aliases.json"))
			return
		}

		alias2BundleMap = make(map[string]string)
		for bundleID, aliases := range bundle2AliasesMap {
			for _, alias := range aliases {
				alias2BundleMap[alias] = bundleID
			}
		}
	})
	return bundle2AliasesMap, errLoad
}

// GetBundleIDByAlias returns the bundle id for a given alias
func GetBundleIDByAlias(alias string) (string, bool) {
	_, err := Load()
	if err != nil {
		return "", false
	}
	bundleID, ok := alias2BundleMap[alias]
	return bundleID, ok
}

// GetAliasesByBundleID returns the aliases for a given bundle id
func GetAliasesByBundleID(bundleID string) ([]string, bool) {
	_, err := Load()
	if err != nil {
		return nil, false
	}
	aliases, ok := bundle2AliasesMap[bundleID]
	return aliases, ok
}

// ResolveBundleID maps an alias to its bundle id. Anything that is not a known
// alias is assumed to already be a bundle id.
func ResolveBundleID(app string) string {
	if bundleID, ok := GetBundleIDByAlias(app); ok && len(bundleID) > 0 {
		return bundleID
	}
	return app
}

// SupportedAliases returns the primary alias of every known app, sorted
func SupportedAliases() []string {
	mapping, err := Load()
	if err != nil {
		return nil
	}
	result := make([]string, 0, len(mapping))
	for _, aliases := range mapping {
		if len(aliases) > 0 {
			result = append(result, aliases[0])
		}
	}
	sort.Strings(result)
	return result
}
