package version // import "github.com/epustaka/epustaka/version"

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the release version, schema migrations are keyed by its
// major.minor part.
var Version = "0.2.1"

func GetCurrentVersion() string {
	return Version
}

// GetSchemaVersion returns the version the schema migrations are tracked
// against, which ignores the patch number.
func GetSchemaVersion(version string) string {
	return GetMinorVersion(version) + ".0"
}

// GetMinorVersion returns the major.minor part of a version string.
func GetMinorVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > 0
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) >= 0
}

// SortVersion sorts a list of version strings in ascending order, in place.
func SortVersion(versions []string) []string {
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(canonical(versions[i]), canonical(versions[j])) < 0
	})
	return versions
}

// canonical makes a bare "x.y.z" acceptable to golang.org/x/mod/semver,
// which requires the leading "v".
func canonical(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
