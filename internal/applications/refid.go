package applications

import (
	"fmt"
	"regexp"
	"time"
)

// Reference ids look like PATTA-20251228-0001: submission date plus a global
// monotonically increasing sequence. The sequence keeps growing past 9999;
// the %04d padding only guarantees a minimum width.
var refIDPattern = regexp.MustCompile(`^PATTA-\d{8}-\d{4,}$`)

// FormatRefID builds a reference id from a submission time and sequence value.
func FormatRefID(t time.Time, seq int64) string {
	return fmt.Sprintf("PATTA-%s-%04d", t.UTC().Format("20060102"), seq)
}

// ValidRefID reports whether s matches the reference id format.
func ValidRefID(s string) bool {
	return refIDPattern.MatchString(s)
}
