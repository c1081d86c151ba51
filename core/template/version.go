package template

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const BaseVersion = "0.1"

// snapshotInterval is how often a full snapshot is stored instead of a
// changelog alone, bounding reconstruction cost to at most ten replays.
const snapshotInterval = 10

// ParseVersion returns error if version string is not in MAJOR.MINOR format
func ParseVersion(v string) (*semver.Version, error) {
	semverVersion, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q", v)
	}
	return semverVersion, nil
}

// IncreaseMinorVersion bumps up the minor version +0.1
func IncreaseMinorVersion(v string) (string, error) {
	oldVersion, err := ParseVersion(v)
	if err != nil {
		return "", err
	}
	newVersion := oldVersion.IncMinor()
	return fmt.Sprintf("%d.%d", newVersion.Major(), newVersion.Minor()), nil
}

// IsSnapshotPoint reports whether a full snapshot must be stored at
// the given version: the base version always carries one, and every
// snapshotInterval-th commit after it.
func IsSnapshotPoint(v string) bool {
	parsed, err := ParseVersion(v)
	if err != nil {
		return true
	}
	minor := parsed.Minor()
	return minor == 1 || minor%snapshotInterval == 0
}
