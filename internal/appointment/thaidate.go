package appointment

import (
	"fmt"
	"time"
)

// buddhistEraOffset converts a Gregorian year to the Thai solar calendar.
const buddhistEraOffset = 543

var thaiMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// FormatTimestamp renders t in loc as d/m/yyyy HH:MM:SS with a Buddhist-era year.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%d/%d/%d %02d:%02d:%02d",
		local.Day(), int(local.Month()), local.Year()+buddhistEraOffset,
		local.Hour(), local.Minute(), local.Second())
}

// FormatLongDateTime renders t as "20 ตุลาคม 2569 เวลา 10:30 น.".
func FormatLongDateTime(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%d %s %d เวลา %02d:%02d น.",
		local.Day(), thaiMonths[local.Month()-1], local.Year()+buddhistEraOffset,
		local.Hour(), local.Minute())
}
