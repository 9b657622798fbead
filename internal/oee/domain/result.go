package oee

// Result carries the equipment-effectiveness ratios for one scope and
// bucket. Ratios are on a 0-100 scale; the minute fields are plain minutes.
// Results are computed on demand and never persisted.
type Result struct {
	Availability     float64
	Performance      float64
	Quality          float64
	OEE              float64
	ScheduledMinutes float64
	DowntimeMinutes  float64
}

// LineSample is the per-line raw material of a computation: schedule and
// downtime already clipped to the bucket, counts taken from the detection
// feed, and rate/metering taken from the line config.
type LineSample struct {
	LineID           string
	ScheduledMinutes float64
	DowntimeMinutes  float64
	RateUnitsPerHour float64
	RealOutput       int64
	InputCount       int64
	QualityCapable   bool
}

// OperatingMinutes returns scheduled minus downtime, floored at zero.
func (s LineSample) OperatingMinutes() float64 {
	minutes := s.ScheduledMinutes - s.DowntimeMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}

// ExpectedOutput is the unit count the line should produce at its target
// rate over its own operating minutes.
func (s LineSample) ExpectedOutput() float64 {
	return s.RateUnitsPerHour * s.OperatingMinutes() / 60
}

// Compute folds one or more line samples into a single Result. Every
// division has a defined fallback so the output is total: zero scheduled
// minutes yields Availability 0, an empty quality-capable subset yields
// Quality 100, and zero expected output yields Performance 0 (100 when real
// output exists regardless).
func Compute(samples []LineSample) Result {
	var (
		scheduled float64
		downtime  float64
		expected  float64
		real      int64
		qualIn    int64
		qualOut   int64
	)
	for _, s := range samples {
		scheduled += s.ScheduledMinutes
		downtime += s.DowntimeMinutes
		// Expected output is per line: a slow line cannot hide behind a
		// fast one in a group.
		expected += s.ExpectedOutput()
		real += s.RealOutput
		if s.QualityCapable {
			qualIn += s.InputCount
			qualOut += s.RealOutput
		}
	}

	result := Result{
		ScheduledMinutes: scheduled,
		DowntimeMinutes:  downtime,
		Availability:     availability(scheduled, downtime),
		Performance:      performance(float64(real), expected),
		Quality:          quality(qualOut, qualIn),
	}
	result.OEE = result.Availability * result.Performance * result.Quality / 10000
	return result
}

func availability(scheduled, downtime float64) float64 {
	if scheduled <= 0 {
		return 0
	}
	value := (scheduled - downtime) / scheduled * 100
	if value < 0 {
		return 0
	}
	return value
}

func performance(real, expected float64) float64 {
	if expected <= 0 {
		if real > 0 {
			return 100
		}
		return 0
	}
	return real / expected * 100
}

func quality(output, input int64) float64 {
	if input <= 0 {
		return 100
	}
	return float64(output) / float64(input) * 100
}
