package datasource

import (
	"github.com/Atypix/Smart100-sub002/internal/types"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// IntervalMinutes converts a bar interval to its length in minutes for
// time-bucket aggregation.
func IntervalMinutes(interval types.Interval) (int, error) {
	switch interval {
	case types.Interval1m:
		return 1, nil
	case types.Interval5m:
		return 5, nil
	case types.Interval15m:
		return 15, nil
	case types.Interval30m:
		return 30, nil
	case types.Interval1h:
		return 60, nil
	case types.Interval4h:
		return 240, nil
	case types.Interval1d:
		return 1440, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "IntervalMinutes: unsupported interval %q", interval)
	}
}
