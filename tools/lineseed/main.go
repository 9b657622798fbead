package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const dayLayout = "2006-01-02"

type config struct {
	dbURL     string
	lineID    string
	day       string
	rate      float64
	threshold time.Duration
	stops     int
	seed      int64
}

func main() {
	logger := log.New(os.Stderr, "lineseed ", log.LstdFlags)

	var cfg config
	flag.StringVar(&cfg.dbURL, "db", os.Getenv("PG_DSN"), "postgres dsn")
	flag.StringVar(&cfg.lineID, "line", "line-demo-001", "line id to seed")
	flag.StringVar(&cfg.day, "day", time.Now().UTC().Format(dayLayout), "production day, YYYY-MM-DD")
	flag.Float64Var(&cfg.rate, "rate", 120, "performance rate, units/hour")
	flag.DurationVar(&cfg.threshold, "threshold", 5*time.Minute, "downtime threshold")
	flag.IntVar(&cfg.stops, "stops", 3, "number of simulated stoppages")
	flag.Int64Var(&cfg.seed, "seed", 1, "rng seed")
	flag.Parse()

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
}

func run(cfg config, logger *log.Logger) error {
	if cfg.dbURL == "" {
		return fmt.Errorf("db dsn required (-db or PG_DSN)")
	}
	day, err := time.Parse(dayLayout, cfg.day)
	if err != nil {
		return fmt.Errorf("parse -day: %w", err)
	}
	day = day.UTC()

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
INSERT INTO line_configs (line_id, downtime_threshold_seconds, performance_rate, has_input_metering, has_output_metering)
VALUES ($1, $2, $3, true, true)
ON CONFLICT (line_id) DO UPDATE SET
	downtime_threshold_seconds = EXCLUDED.downtime_threshold_seconds,
	performance_rate = EXCLUDED.performance_rate`,
		cfg.lineID, int64(cfg.threshold.Seconds()), cfg.rate); err != nil {
		return fmt.Errorf("seed line config: %w", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM line_shifts WHERE line_id = $1", cfg.lineID); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `
INSERT INTO line_shifts (line_id, start_hour, start_minute, end_hour, end_minute, overnight)
VALUES ($1, 6, 0, 14, 0, false), ($1, 14, 0, 22, 0, false)`, cfg.lineID); err != nil {
		return fmt.Errorf("seed shifts: %w", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM detections WHERE line_id = $1", cfg.lineID); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	stops := make(map[int]bool, cfg.stops)
	for len(stops) < cfg.stops {
		stops[6+rng.Intn(16)] = true
	}

	// One unit per cycle at the target rate: an input detection at the cycle
	// start, the matching output half a cycle later unless the unit is
	// scrapped. Stopped hours skip their first 20 minutes so the gap
	// analyzer has something to find.
	cycle := time.Duration(float64(time.Hour) / cfg.rate)
	insert := func(id int64, at time.Time, areaID, role string) error {
		_, err := db.ExecContext(ctx, `
INSERT INTO detections (id, line_id, ts, area_id, area_role, product_id)
VALUES ($1, $2, $3, $4, $5, 'prod-demo')`, id, cfg.lineID, at, areaID, role)
		return err
	}

	var id int64
	count := 0
	for at := day.Add(6 * time.Hour); at.Before(day.Add(22 * time.Hour)); at = at.Add(cycle) {
		if stops[at.Hour()] && at.Minute() < 20 {
			continue
		}
		id++
		if err := insert(id, at, "area-in", "input"); err != nil {
			return fmt.Errorf("seed input detection: %w", err)
		}
		if rng.Float64() < 0.02 {
			continue // scrapped unit never reaches the output area
		}
		id++
		if err := insert(id, at.Add(cycle/2), "area-out", "output"); err != nil {
			return fmt.Errorf("seed output detection: %w", err)
		}
		count++
	}

	logger.Printf("seeded: line=%s day=%s detections=%d stop_hours=%d", cfg.lineID, cfg.day, count, len(stops))
	return nil
}
