// Package manifest extracts declared dependencies from repository manifests.
package manifest

import (
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/mod/modfile"
)

const (
	PackageJSON = "package.json"
	GoMod       = "go.mod"
)

// Known lists the manifests looked up, in order
var Known = []string{PackageJSON, GoMod}

// Parse dispatches on the manifest file name
func Parse(name string, data []byte) (map[string]string, error) {
	switch name {
	case PackageJSON:
		return ParsePackageJSON(data)
	case GoMod:
		return ParseGoMod(data)
	default:
		return nil, fmt.Errorf("unsupported manifest %q", name)
	}
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON merges dependencies and devDependencies. A package listed
// in both keeps its devDependencies version.
func ParsePackageJSON(data []byte) (map[string]string, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name, version := range pkg.Dependencies {
		deps[name] = version
	}
	for name, version := range pkg.DevDependencies {
		deps[name] = version
	}
	return deps, nil
}

// ParseGoMod returns the required modules, indirect ones included
func ParseGoMod(data []byte) (map[string]string, error) {
	f, err := modfile.ParseLax(GoMod, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	deps := make(map[string]string, len(f.Require))
	for _, req := range f.Require {
		deps[req.Mod.Path] = req.Mod.Version
	}
	return deps, nil
}

// Names returns the dependency names in lexical order
func Names(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
