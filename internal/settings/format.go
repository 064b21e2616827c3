package settings

import (
	"fmt"
	"time"
)

// FormatName renders a mushroom name according to the user's preference.
func FormatName(scientificName, commonName string, format NameFormat) string {
	switch format {
	case NameScientific:
		return scientificName
	case NameCommon:
		return commonName
	default:
		return fmt.Sprintf("%s (%s)", commonName, scientificName)
	}
}

// FormatTimestamp renders an epoch-milliseconds capture time according to
// the user's preference, in local time.
func FormatTimestamp(millis int64, format TimeFormat) string {
	t := time.UnixMilli(millis)
	switch format {
	case TimeDayMonthYear:
		return t.Format("02/01/2006")
	case TimeFull:
		return t.Format("15:04:05 02/01/2006")
	default:
		return t.Format("January, 2006")
	}
}
