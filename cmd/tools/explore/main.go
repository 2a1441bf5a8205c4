package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/soltixdb/tsexplorer/internal/chart"
	"github.com/soltixdb/tsexplorer/internal/config"
	"github.com/soltixdb/tsexplorer/internal/datasource"
	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/models"
	"github.com/soltixdb/tsexplorer/internal/services"
	"github.com/soltixdb/tsexplorer/internal/timeseries"
)

type options struct {
	configPath  string
	file        string
	dateColumn  string
	valueColumn string
	start       string
	end         string
	granularity string
	table       bool
	limit       int
	jsonOutput  bool
	quiet       bool
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (source and dashboard defaults)")
	flag.StringVar(&opts.file, "file", "", "CSV file to explore (default: configured source)")
	flag.StringVar(&opts.dateColumn, "date-column", "", "Date column (default: detected)")
	flag.StringVar(&opts.valueColumn, "value-column", "", "Numeric column to aggregate (default: first numeric column)")
	flag.StringVar(&opts.start, "start", "", "Start date YYYY-MM-DD (default: first date in data)")
	flag.StringVar(&opts.end, "end", "", "End date YYYY-MM-DD (default: last date in data)")
	flag.StringVar(&opts.granularity, "granularity", "", "auto, daily, weekly, monthly, quarterly or yearly")
	flag.BoolVar(&opts.table, "table", false, "Print the filtered raw rows")
	flag.IntVar(&opts.limit, "limit", 20, "Maximum raw rows to print with -table (0 = all)")
	flag.BoolVar(&opts.jsonOutput, "json", false, "Print the full result as JSON")
	flag.BoolVar(&opts.quiet, "quiet", false, "Disable the load progress bar")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger := logging.NewCLI(opts.verbose)
	logging.SetGlobal(logger)

	var progress io.Writer
	if !opts.quiet {
		progress = stderr
	}

	var src datasource.Source
	if opts.file != "" {
		fileSrc := datasource.NewFileSource(opts.file)
		fileSrc.Progress = progress
		src = fileSrc
	} else {
		var err error
		src, err = datasource.FromConfig(cfg.Source, progress)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("no source configured; pass -file")
		}
	}

	defaultGranularity, err := timeseries.ParseGranularity(cfg.Dashboard.DefaultGranularity)
	if err != nil {
		return err
	}

	store := services.NewDatasetStore(cfg.Source.Location())
	datasets := services.NewDatasetService(logger, store, nil, nil)
	explorer := services.NewExplorerService(logger, store, nil, nil, services.ExplorerOptions{
		DefaultGranularity: defaultGranularity,
	})

	if _, err := datasets.Load(ctx, services.DefaultDatasetID, src); err != nil {
		return err
	}

	req := &models.ExploreRequest{
		Dataset:      services.DefaultDatasetID,
		DateColumn:   opts.dateColumn,
		ValueColumn:  opts.valueColumn,
		StartDate:    opts.start,
		EndDate:      opts.end,
		Granularity:  opts.granularity,
		IncludeTable: opts.table,
		TableLimit:   opts.limit,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	result, err := explorer.Explore(ctx, req)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(stdout, result)
}

func printResult(w io.Writer, result *services.ExploreResult) error {
	fmt.Fprintf(w, "Date column:   %s\n", result.DateColumn)
	fmt.Fprintf(w, "Value column:  %s\n", result.ValueColumn)
	fmt.Fprintf(w, "Range:         %s to %s (%d days)\n", result.StartDate, result.EndDate, result.SpanDays)
	fmt.Fprintf(w, "Granularity:   %s (%s)\n", result.GranularityLabel, result.GranularityChoice)
	if dropped := result.Stats.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "Dropped rows:  %d\n", dropped)
	}
	fmt.Fprintln(w)

	if result.Empty {
		fmt.Fprintln(w, result.Message)
	} else {
		k := result.KPIs
		fmt.Fprintf(w, "Total:         %s\n", k.TotalLabel)
		fmt.Fprintf(w, "Average:       %s\n", k.AverageLabel)
		fmt.Fprintf(w, "Min bucket:    %s\n", k.MinLabel)
		fmt.Fprintf(w, "Max bucket:    %s\n", k.MaxLabel)
		fmt.Fprintln(w)

		if err := chart.RenderText(w, result.Chart); err != nil {
			return err
		}
	}

	if result.Table != nil {
		fmt.Fprintln(w)
		if err := printTable(w, result.Table); err != nil {
			return err
		}
	}
	return nil
}

func printTable(w io.Writer, table *services.TableView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))

	cells := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			cells[i] = fmt.Sprint(row[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if table.Truncated {
		fmt.Fprintf(w, "(%d of %d rows shown)\n", len(table.Rows), table.Total)
	}
	return nil
}
