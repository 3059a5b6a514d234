package domain

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const barWidth = 10

// Progress is the state of a running transfer.
type Progress struct {
	Done  int64
	Total int64
}

// Percent returns the completed share in [0, 100], or 0 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(100, float64(p.Done)*100/float64(p.Total))
}

// Render formats the progress placeholder text.
func (p Progress) Render() string {
	if p.Total <= 0 {
		return fmt.Sprintf("📥 Downloading… %s", humanize.IBytes(uint64(p.Done)))
	}
	filled := int(p.Percent()) * barWidth / 100
	bar := strings.Repeat("■", filled) + strings.Repeat("□", barWidth-filled)
	return fmt.Sprintf("📥 Downloading…\n[%s] %.1f%%\n%s / %s",
		bar, p.Percent(), humanize.IBytes(uint64(p.Done)), humanize.IBytes(uint64(p.Total)))
}
