package export

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

// filenamePattern mirrors the original exporter's strftime("%Y-%m-%d_%H%M%S")
// naming convention (spec §4.12).
const filenamePattern = "%Y-%m-%d_%H%M%S"

// FormatFilename builds "<prefix>_<timestamp>.<ext>" using the given
// instant, so callers can pass a fixed time in tests for reproducible
// output names.
func FormatFilename(prefix string, ext string, at time.Time) (string, error) {
	f, err := strftime.New(filenamePattern)
	if err != nil {
		return "", fmt.Errorf("compile filename pattern: %w", err)
	}
	return fmt.Sprintf("%s_%s.%s", prefix, f.FormatString(at), ext), nil
}
