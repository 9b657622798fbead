package masterdata

import "time"

// LineConfig is the per-line configuration the engine reads. It is owned by
// the external configuration provider and never written here.
type LineConfig struct {
	LineID string

	// DowntimeThreshold is the largest detection gap still considered
	// normal production on the output area.
	DowntimeThreshold time.Duration

	// PerformanceRate is the target output in units per hour.
	PerformanceRate float64

	// HasInputMetering and HasOutputMetering tell whether the line can
	// measure scrap. Quality is computed only for lines with both.
	HasInputMetering  bool
	HasOutputMetering bool
}

// Validate checks config invariants.
func (c LineConfig) Validate() error {
	if c.LineID == "" {
		return ErrEmptyLineID
	}
	if c.DowntimeThreshold <= 0 {
		return ErrInvalidThreshold
	}
	if c.PerformanceRate < 0 {
		return ErrNegativeRate
	}
	return nil
}

// QualityCapable reports whether the line meters both input and output.
func (c LineConfig) QualityCapable() bool {
	return c.HasInputMetering && c.HasOutputMetering
}
