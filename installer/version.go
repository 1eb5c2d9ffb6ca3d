package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crafted-tech/msiflow/msi"
)

// productVersionFields is the number of version fields the engine compares.
// A fourth field is stored but ignored by upgrades.
const productVersionFields = 3

// CompareVersions compares two product version strings the way the engine
// does: major.minor.build, each field numeric, any fourth field ignored.
// Returns:
//   - negative if v1 < v2
//   - zero if v1 == v2
//   - positive if v1 > v2
//
// Missing fields count as zero, so "1.2" equals "1.2.0".
func CompareVersions(v1, v2 string) int {
	parts1 := parseVersion(v1)
	parts2 := parseVersion(v2)

	for i := range productVersionFields {
		if parts1[i] < parts2[i] {
			return -1
		}
		if parts1[i] > parts2[i] {
			return 1
		}
	}
	return 0
}

// parseVersion extracts the significant fields of a version string.
// "1.2.3.4" -> [1, 2, 3]
// "v1.2-beta" -> [1, 2, 0]
func parseVersion(v string) [productVersionFields]int {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	v = strings.TrimPrefix(v, "V")

	var result [productVersionFields]int
	for i, part := range strings.SplitN(v, ".", productVersionFields+1) {
		if i == productVersionFields {
			break
		}
		// "3-beta" -> "3"
		if idx := strings.IndexAny(part, "-+_ "); idx > 0 {
			part = part[:idx]
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			continue
		}
		result[i] = n
	}
	return result
}

// ValidateProductVersion checks that v is a well-formed product version:
// two to four numeric fields with major and minor at most 255 and build at
// most 65535.
func ValidateProductVersion(v string) error {
	parts := strings.Split(v, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return fmt.Errorf("product version %q: want 2 to 4 fields", v)
	}
	limits := []int{255, 255, 65535, 65535}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return fmt.Errorf("product version %q: field %d is not a number", v, i+1)
		}
		if n > limits[i] {
			return fmt.Errorf("product version %q: field %d exceeds %d", v, i+1, limits[i])
		}
	}
	return nil
}

// IsNewerVersion returns true if newVersion is newer than oldVersion.
func IsNewerVersion(newVersion, oldVersion string) bool {
	return CompareVersions(newVersion, oldVersion) > 0
}

// IsOlderVersion returns true if newVersion is older than oldVersion.
func IsOlderVersion(newVersion, oldVersion string) bool {
	return CompareVersions(newVersion, oldVersion) < 0
}

// IsSameVersion returns true if the versions are equal.
func IsSameVersion(v1, v2 string) bool {
	return CompareVersions(v1, v2) == 0
}

// InstallAction represents the type of installation action.
type InstallAction int

const (
	ActionFreshInstall InstallAction = iota
	ActionUpgrade
	ActionDowngrade
	ActionReinstall
)

// String returns the action name.
func (a InstallAction) String() string {
	switch a {
	case ActionFreshInstall:
		return "Fresh Install"
	case ActionUpgrade:
		return "Upgrade"
	case ActionDowngrade:
		return "Downgrade"
	case ActionReinstall:
		return "Reinstall"
	default:
		return "Install"
	}
}

// DetermineAction determines the installation action based on versions.
func DetermineAction(installedVersion, packageVersion string) InstallAction {
	if installedVersion == "" {
		return ActionFreshInstall
	}

	cmp := CompareVersions(packageVersion, installedVersion)
	switch {
	case cmp > 0:
		return ActionUpgrade
	case cmp < 0:
		return ActionDowngrade
	default:
		return ActionReinstall
	}
}

// DetectAction looks up the installed version of code and determines the
// action installing packageVersion would take. It also returns the installed
// version, "" when the product is not installed.
func DetectAction(code msi.GUID, packageVersion string) (InstallAction, string, error) {
	installed, err := engineVersion(code)
	if msi.IsUnknownProduct(err) {
		return ActionFreshInstall, "", nil
	}
	if err != nil {
		return ActionFreshInstall, "", fmt.Errorf("query installed version of %s: %w", code, err)
	}
	return DetermineAction(installed, packageVersion), installed, nil
}
