package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	detection "factoryline-cloud/internal/detection/domain"
	downtime "factoryline-cloud/internal/downtime/domain"
	"factoryline-cloud/internal/interval"
	masterdata "factoryline-cloud/internal/masterdata/domain"
	"factoryline-cloud/internal/observability/metrics"
	oee "factoryline-cloud/internal/oee/domain"
)

// BucketResult is the per-bucket outcome of an aggregation. A bucket where
// some lines failed carries the successful subset and is flagged Partial;
// FailedLines names the lines that yielded no sample.
type BucketResult struct {
	Window      interval.Window
	Result      oee.Result
	Partial     bool
	FailedLines []string
}

// Aggregator computes Availability, Performance, Quality and OEE for one
// line or a group of lines over bucketed time windows. It is read-only and
// safe to run concurrently with in-flight incremental calculations.
type Aggregator struct {
	feed     detection.Feed
	store    downtime.Store
	provider masterdata.Provider
	logger   *log.Logger
}

// NewAggregator constructs an aggregator.
func NewAggregator(feed detection.Feed, store downtime.Store, provider masterdata.Provider, logger *log.Logger) (*Aggregator, error) {
	if feed == nil {
		return nil, errors.New("aggregator: nil feed")
	}
	if store == nil {
		return nil, errors.New("aggregator: nil store")
	}
	if provider == nil {
		return nil, errors.New("aggregator: nil provider")
	}
	return &Aggregator{feed: feed, store: store, provider: provider, logger: logger}, nil
}

// ComputeLine computes one result per bucket for a single line.
func (a *Aggregator) ComputeLine(ctx context.Context, lineID string, window interval.Window, bucket time.Duration) ([]BucketResult, error) {
	return a.compute(ctx, []string{lineID}, window, bucket)
}

// ComputeGroup resolves the group and computes one result per bucket over
// all member lines.
func (a *Aggregator) ComputeGroup(ctx context.Context, groupID string, window interval.Window, bucket time.Duration) ([]BucketResult, error) {
	lines, err := a.provider.GetLineGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("aggregator: group %s: %w", groupID, err)
	}
	return a.compute(ctx, lines, window, bucket)
}

func (a *Aggregator) compute(ctx context.Context, lines []string, window interval.Window, bucket time.Duration) ([]BucketResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveOEECompute(result, time.Since(start))
	}()

	if len(lines) == 0 {
		result = metrics.ResultError
		return nil, masterdata.ErrEmptyLineID
	}

	buckets := window.SplitBuckets(bucket)
	results := make([]BucketResult, 0, len(buckets))
	for _, b := range buckets {
		if err := ctx.Err(); err != nil {
			result = metrics.ResultError
			return nil, err
		}

		bucketResult := BucketResult{Window: b}
		samples := make([]oee.LineSample, 0, len(lines))
		for _, lineID := range lines {
			sample, err := a.lineSample(ctx, lineID, b)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					result = metrics.ResultError
					return nil, ctxErr
				}
				// One bad line must not sink the whole bucket.
				bucketResult.Partial = true
				bucketResult.FailedLines = append(bucketResult.FailedLines, lineID)
				if a.logger != nil {
					a.logger.Printf("oee sample error: line=%s bucket=%s err=%v", lineID, b.Start.Format(time.RFC3339), err)
				}
				continue
			}
			samples = append(samples, sample)
		}
		bucketResult.Result = oee.Compute(samples)
		results = append(results, bucketResult)
	}
	return results, nil
}

// lineSample gathers the raw numbers for one line and bucket: scheduled
// minutes from the shift schedule, downtime minutes from the merged interval
// set clipped to the bucket, and detection counts from the feed.
func (a *Aggregator) lineSample(ctx context.Context, lineID string, bucket interval.Window) (oee.LineSample, error) {
	cfg, err := a.provider.GetLineConfig(ctx, lineID)
	if err != nil {
		return oee.LineSample{}, err
	}
	schedule, err := a.provider.GetShiftSchedule(ctx, lineID)
	if err != nil {
		return oee.LineSample{}, err
	}

	stored, err := a.store.Query(ctx, lineID, bucket.Start, bucket.End)
	if err != nil {
		return oee.LineSample{}, err
	}
	downMinutes := downtimeMinutes(stored, bucket)

	realOutput, err := a.feed.CountDetections(ctx, lineID, detection.RoleOutput, bucket.Start, bucket.End)
	if err != nil {
		return oee.LineSample{}, err
	}

	var inputCount int64
	if cfg.QualityCapable() {
		inputCount, err = a.feed.CountDetections(ctx, lineID, detection.RoleInput, bucket.Start, bucket.End)
		if err != nil {
			return oee.LineSample{}, err
		}
	}

	return oee.LineSample{
		LineID:           lineID,
		ScheduledMinutes: schedule.ScheduledMinutes(bucket),
		DowntimeMinutes:  downMinutes,
		RateUnitsPerHour: cfg.PerformanceRate,
		RealOutput:       realOutput,
		InputCount:       inputCount,
		QualityCapable:   cfg.QualityCapable(),
	}, nil
}

// downtimeMinutes merges the stored interval set under the db-wins rule and
// sums the durations clipped to the bucket. Stored calculated intervals were
// trimmed at write time, but an operator entry added later may overlap them;
// merging again on read keeps the accounting consistent.
func downtimeMinutes(stored []downtime.Interval, bucket interval.Window) float64 {
	calculated := make([]downtime.Interval, 0, len(stored))
	for _, i := range stored {
		if i.Source == downtime.SourceCalculated {
			calculated = append(calculated, i)
		}
	}
	merged := downtime.Merge(calculated, stored)

	var minutes float64
	for _, i := range merged {
		minutes += bucket.Clip(i.Start, i.End).Minutes()
	}
	return minutes
}
