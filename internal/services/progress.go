package services

import (
	"fmt"
	"math"
)

const (
	// progress stays below this until the resume is stored
	maxRunningPercent = 99
	completePercent   = 100
)

// OverallPercent maps recognition progress on one page to whole-job progress.
func OverallPercent(page, totalPages int, fraction float64) int {
	if totalPages <= 0 {
		return 0
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	percent := int(math.Floor((float64(page-1) + fraction) / float64(totalPages) * 100))
	if percent < 0 {
		return 0
	}
	if percent > completePercent {
		return completePercent
	}
	return percent
}

// FormatPage renders one page of extracted text with its boundary marker.
func FormatPage(page int, text string) string {
	return fmt.Sprintf("---- Page %d ----\n\n%s\n\n", page, text)
}

type progressTracker struct {
	last int
}

// advance records percent, clamped to the running ceiling, and reports
// whether it moved forward.
func (p *progressTracker) advance(percent int) (int, bool) {
	if percent > maxRunningPercent {
		percent = maxRunningPercent
	}
	if percent <= p.last {
		return p.last, false
	}
	p.last = percent
	return percent, true
}

func (p *progressTracker) current() int {
	return p.last
}
