package downtime

import (
	"time"

	detection "factoryline-cloud/internal/detection/domain"
)

// AnalyzeGaps scans consecutive detection pairs and emits a calculated
// interval for every gap strictly greater than threshold. The input must be
// detections from the line's output area, ascending by timestamp.
//
// Only closed, bounded gaps are emitted: a trailing gap with no closing
// detection is not reported, so a window ending mid-stoppage never produces
// a false positive. The function is pure; identical input yields identical
// output.
func AnalyzeGaps(detections []detection.DetectionEvent, threshold time.Duration) []Interval {
	if len(detections) < 2 || threshold <= 0 {
		return nil
	}

	var intervals []Interval
	for i := 1; i < len(detections); i++ {
		prev, next := detections[i-1], detections[i]
		if next.Timestamp.Sub(prev.Timestamp) <= threshold {
			continue
		}
		intervals = append(intervals, Interval{
			Start:    prev.Timestamp,
			End:      next.Timestamp,
			Source:   SourceCalculated,
			ClosedBy: next.ID,
		})
	}
	return intervals
}
