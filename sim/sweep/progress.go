package sweep

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogProgress reports sweep progress through logrus every Every combinations and on
// completion.
type LogProgress struct {
	Every int
	start time.Time
}

// NewLogProgress starts the elapsed-time clock.
func NewLogProgress(every int) *LogProgress {
	if every <= 0 {
		every = 1000
	}
	return &LogProgress{Every: every, start: time.Now()}
}

// Advance logs when done crosses a reporting boundary.
func (p *LogProgress) Advance(done, total int) {
	if done%p.Every != 0 && done != total {
		return
	}
	elapsed := time.Since(p.start)
	var eta time.Duration
	if done > 0 {
		eta = time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	}
	logrus.Infof("sweep progress: %d/%d (%.1f%%) elapsed=%s eta=%s",
		done, total, 100*float64(done)/float64(total), elapsed.Round(time.Second), eta.Round(time.Second))
}
