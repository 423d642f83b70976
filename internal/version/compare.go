package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// CheckVersionCompatibility checks if the running engine can consume an
// artifact produced under another engine version, such as a run report.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 0.3.0 is compatible with 0.3.5)
func CheckVersionCompatibility(engineVersion, reportVersion string) error {
	// Strip 'v' prefix if present for consistency
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	reportVersion = strings.TrimPrefix(reportVersion, "v")

	// Skip version check for "main" (development builds)
	if engineVersion == "main" || reportVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	reportSemver, err := semver.NewVersion(reportVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid report version '%s'", reportVersion)
	}

	if engineSemver.Major() != reportSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: engine is %d.x.x but report was produced by %d.x.x",
			engineSemver.Major(), reportSemver.Major())
	}

	if engineSemver.Minor() != reportSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: engine is %d.%d.x but report was produced by %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			reportSemver.Major(), reportSemver.Minor())
	}

	// Patch versions can differ, so we're compatible
	return nil
}
