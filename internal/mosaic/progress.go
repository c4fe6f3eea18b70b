package mosaic

import (
	log "github.com/sirupsen/logrus"
)

// ProgressFunc informs a caller about the progress of a long operation: num
// items out of max are done.
type ProgressFunc func(num, max int)

// ProgressIgnore is a ProgressFunc that does nothing.
func ProgressIgnore(num, max int) {}

// LoggerProgressFunc returns a ProgressFunc that logs through logger at info
// level every step items, and always on the last one. A step of zero or less
// logs only the last item.
func LoggerProgressFunc(logger log.FieldLogger, prefix string, step int) ProgressFunc {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return func(num, max int) {
		if max == 0 {
			return
		}
		if num != max && (step <= 0 || num%step != 0) {
			return
		}
		percent := float64(num) / float64(max) * 100.0
		if percent > 100.0 {
			percent = 100.0
		}
		logger.Infof("%s: %d of %d (%.1f%%)", prefix, num, max, percent)
	}
}
