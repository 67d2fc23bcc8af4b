package buildnumber

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

type InvalidVersionError struct {
	Version string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version, must be MAJOR.MINOR.PATCH: %s", e.Version)
}

type InvalidFlagError struct {
	Name  string
	Value string
}

func (e *InvalidFlagError) Error() string {
	return fmt.Sprintf("%s must be 'true' or 'false': %s", e.Name, e.Value)
}

// ValidateVersion checks that version is a plain MAJOR.MINOR.PATCH triple.
// Pre-release and build metadata are rejected since the build number is
// appended after a "-".
func ValidateVersion(version string) error {
	if !versionPattern.MatchString(version) {
		return &InvalidVersionError{Version: version}
	}

	if _, err := semver.StrictNewVersion(version); err != nil {
		return &InvalidVersionError{Version: version}
	}

	return nil
}

// ParseBoolOption accepts exactly "true" or "false".
func ParseBoolOption(name, raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &InvalidFlagError{Name: name, Value: raw}
	}
}
