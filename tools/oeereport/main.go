package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	detectionpostgres "factoryline-cloud/internal/detection/infrastructure/postgres"
	downtimeapp "factoryline-cloud/internal/downtime/application"
	"factoryline-cloud/internal/downtime/application/eventbus"
	downtime "factoryline-cloud/internal/downtime/domain"
	downtimepostgres "factoryline-cloud/internal/downtime/infrastructure/postgres"
	"factoryline-cloud/internal/interval"
	masterdatapostgres "factoryline-cloud/internal/masterdata/infrastructure/postgres"
	oeeapp "factoryline-cloud/internal/oee/application"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const dayLayout = "2006-01-02"

type config struct {
	dbURL   string
	lineID  string
	groupID string
	from    string
	to      string
	bucket  time.Duration
	outDir  string
	refresh bool
}

func main() {
	logger := log.New(os.Stderr, "oeereport ", log.LstdFlags)
	cfg := parseFlags()

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("report failed: %v", err)
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.dbURL, "db", os.Getenv("PG_DSN"), "postgres dsn")
	flag.StringVar(&cfg.lineID, "line", "", "line id (mutually exclusive with -group)")
	flag.StringVar(&cfg.groupID, "group", "", "group id (mutually exclusive with -line)")
	flag.StringVar(&cfg.from, "from", "", "window start, YYYY-MM-DD")
	flag.StringVar(&cfg.to, "to", "", "window end, YYYY-MM-DD (exclusive)")
	flag.DurationVar(&cfg.bucket, "bucket", 24*time.Hour, "bucket size")
	flag.StringVar(&cfg.outDir, "out", "var/reports/oee", "output directory")
	flag.BoolVar(&cfg.refresh, "refresh", true, "run the incremental downtime calculation before reporting")
	flag.Parse()
	return cfg
}

func run(cfg config, logger *log.Logger) error {
	if cfg.dbURL == "" {
		return fmt.Errorf("db dsn required (-db or PG_DSN)")
	}
	if (cfg.lineID == "") == (cfg.groupID == "") {
		return fmt.Errorf("exactly one of -line or -group required")
	}
	from, err := time.Parse(dayLayout, cfg.from)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	to, err := time.Parse(dayLayout, cfg.to)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}
	window, err := interval.NewWindow(from.UTC(), to.UTC())
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	feed := detectionpostgres.NewDetectionFeed(db)
	store := downtimepostgres.NewDowntimeStore(db)
	provider := masterdatapostgres.NewLineProvider(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	scope := cfg.lineID
	lines := []string{cfg.lineID}
	if cfg.groupID != "" {
		scope = cfg.groupID
		if lines, err = provider.GetLineGroup(ctx, cfg.groupID); err != nil {
			return err
		}
	}

	if cfg.refresh {
		bus := eventbus.NewInMemoryBus()
		downtimeapp.WireDowntimeEventBus(bus, logger)
		calc, err := downtimeapp.NewCalculator(feed, store, provider, bus, logger)
		if err != nil {
			return err
		}
		for _, lineID := range lines {
			if _, err := calc.CalculateIncremental(ctx, lineID); err != nil {
				return fmt.Errorf("refresh downtime %s: %w", lineID, err)
			}
		}
	}

	agg, err := oeeapp.NewAggregator(feed, store, provider, logger)
	if err != nil {
		return err
	}

	var results []oeeapp.BucketResult
	if cfg.lineID != "" {
		results, err = agg.ComputeLine(ctx, cfg.lineID, window, cfg.bucket)
	} else {
		results, err = agg.ComputeGroup(ctx, cfg.groupID, window, cfg.bucket)
	}
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	intervals := make(map[string][]downtime.Interval, len(lines))
	for _, lineID := range lines {
		stored, err := store.Query(ctx, lineID, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("query downtime %s: %w", lineID, err)
		}
		intervals[lineID] = stored
	}

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return err
	}
	xlsxPath := filepath.Join(cfg.outDir, fmt.Sprintf("oee_%s_%s.xlsx", scope, cfg.from))
	if err := writeWorkbook(xlsxPath, results); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	pdfPath := filepath.Join(cfg.outDir, fmt.Sprintf("downtime_%s_%s.pdf", scope, cfg.from))
	if err := writeDowntimePDF(pdfPath, scope, window, intervals); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	logger.Printf("report written: xlsx=%s pdf=%s buckets=%d", xlsxPath, pdfPath, len(results))
	return nil
}

func writeWorkbook(path string, results []oeeapp.BucketResult) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet := "OEE"
	index, err := book.NewSheet(sheet)
	if err != nil {
		return err
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headers := []string{"Bucket Start", "Bucket End", "Scheduled Min", "Downtime Min", "Availability %", "Performance %", "Quality %", "OEE %", "Partial", "Failed Lines"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := book.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for row, result := range results {
		values := []any{
			result.Window.Start.Format(time.RFC3339),
			result.Window.End.Format(time.RFC3339),
			result.Result.ScheduledMinutes,
			result.Result.DowntimeMinutes,
			result.Result.Availability,
			result.Result.Performance,
			result.Result.Quality,
			result.Result.OEE,
			result.Partial,
			fmt.Sprintf("%v", result.FailedLines),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := book.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return book.SaveAs(path)
}

func writeDowntimePDF(path, scope string, window interval.Window, intervals map[string][]downtime.Interval) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Downtime summary: %s", scope))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Window: %s - %s",
		window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 7, "Line", "1", 0, "", false, 0, "")
	pdf.CellFormat(45, 7, "Start", "1", 0, "", false, 0, "")
	pdf.CellFormat(45, 7, "End", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 7, "Source", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 7, "Reason", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for lineID, stored := range intervals {
		for _, i := range stored {
			pdf.CellFormat(35, 6, lineID, "1", 0, "", false, 0, "")
			pdf.CellFormat(45, 6, i.Start.Format("2006-01-02 15:04"), "1", 0, "", false, 0, "")
			pdf.CellFormat(45, 6, i.End.Format("2006-01-02 15:04"), "1", 0, "", false, 0, "")
			pdf.CellFormat(25, 6, string(i.Source), "1", 0, "", false, 0, "")
			pdf.CellFormat(40, 6, i.Reason, "1", 1, "", false, 0, "")
		}
	}

	return pdf.OutputFileAndClose(path)
}
