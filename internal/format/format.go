// Package format renders byte counts and progress for terminal output.
package format

import "fmt"

var units = [...]string{"B", "KB", "MB", "GB", "TB"}

// FileSize renders a byte count with one decimal in the largest fitting
// unit.
func FileSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, units[unit])
}

// Progress renders uploaded/total as a percentage with one decimal.
func Progress(uploaded, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(uploaded)/float64(total)*100)
}
