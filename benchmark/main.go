// Package main provides a performance benchmarking tool for the cgmprep CLI.
// It synthesizes exports of increasing length, then times the clean command
// across worker counts and run ledger backends. Each case runs several times;
// the first successful run counts as cold and the rest are averaged as warm.
// Results are written as CSV for performance analysis and documentation.
//
// Prerequisites:
// - cgmprep binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the synthetic workbooks and the ledger database
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
	"github.com/xuri/excelize/v2"
)

// BenchmarkResult holds the timings of one benchmark case.
type BenchmarkResult struct {
	Days     int
	Workers  int
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir    string
	Timeout    time.Duration
	Runs       int
	StartSheet string
	DayCounts  []int
	Workers    []int
	Backends   []string
}

// readingsPerDay is one reading every five minutes.
const readingsPerDay = 288

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:    os.Args[1],
		Timeout:    5 * time.Minute,
		Runs:       4,
		StartSheet: "Fri Jan 1, 2021",
		DayCounts:  []int{1, 7, 30, 90},
		Workers:    []int{1, runtime.NumCPU()},
		Backends:   []string{"none", "sqlite"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the cgmprep binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("cgmprep"); err != nil {
		return fmt.Errorf("cgmprep binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks executes every case over freshly generated workbooks
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: day counts %v, workers %v, backends %v, %d runs each\n",
		config.DayCounts, config.Workers, config.Backends, config.Runs)

	for _, days := range config.DayCounts {
		path := filepath.Join(config.WorkDir, fmt.Sprintf("synthetic-%dd.xlsx", days))
		fmt.Printf("Generating %s\n", path)
		if err := writeSyntheticWorkbook(path, config.StartSheet, days); err != nil {
			fmt.Printf("  Skipping %d days: %v\n", days, err)
			continue
		}

		for _, workers := range config.Workers {
			for _, backend := range config.Backends {
				results = append(results, runBenchmarkCase(config, path, days, workers, backend))
			}
		}
	}
	return results
}

// runBenchmarkCase runs one configuration several times and summarizes the timings
func runBenchmarkCase(config BenchmarkConfig, path string, days, workers int, backend string) BenchmarkResult {
	fmt.Printf("Running %d days with %d workers on %s backend\n", days, workers, backend)

	args := []string{
		"clean", path,
		"--start", config.StartSheet,
		"--days", strconv.Itoa(days),
		"--workers", strconv.Itoa(workers),
		"--runs-backend", backend,
		"--limit", "1",
		"--color", "no",
	}
	if backend == "sqlite" {
		args = append(args, "--runs-db-connect", filepath.Join(config.WorkDir, "benchmark-runs.db"))
	}

	times := runBenchmark(config, args)

	result := BenchmarkResult{Days: days, Workers: workers, Backend: backend, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark executes cgmprep with args and returns the durations of successful runs
func runBenchmark(config BenchmarkConfig, args []string) []float64 {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("cgmprep", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}
	return times
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Cleaning completed in") &&
		strings.Contains(outputStr, "workers")
}

// writeSyntheticWorkbook writes days sheets of plausible readings in the export layout
func writeSyntheticWorkbook(path, start string, days int) error {
	names, err := contract.SheetNames(start, days)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := []any{
		schema.TimeColumn, schema.GlucoseColumn, schema.TrendColumn,
		schema.ActivityColumn, schema.ExerciseColumn, "carbs (g)",
	}
	trends := []string{"↓↓", "↓", "➘", "→", "➚", "↑", "↑↑"}

	for d, name := range names {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		date, _ := contract.ParseSheetName(name)
		day := time.Date(date.Year, time.Month(date.Month+1), date.Day, 0, 0, 0, 0, time.UTC)

		headerCell, _ := excelize.CoordinatesToCellName(1, contract.DefaultHeaderRow+1)
		if err := f.SetSheetRow(name, headerCell, &header); err != nil {
			return err
		}
		for i := range readingsPerDay {
			phase := float64(i+d*readingsPerDay) / 36
			glucose := any(math.Round((7+2.5*math.Sin(phase))*10) / 10)
			trend := trends[int(math.Round(3+3*math.Cos(phase)))]
			if i%97 == 50 {
				glucose, trend = nil, "?"
			}
			row := []any{day.Add(time.Duration(i) * 5 * time.Minute), glucose, trend, nil, nil, nil}
			if i%144 == 96 {
				row[3], row[4] = "Walking", 30
			}
			cell, _ := excelize.CoordinatesToCellName(1, contract.DefaultHeaderRow+2+i)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/cgmprep_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"days", "workers", "backend", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{strconv.Itoa(result.Days), strconv.Itoa(result.Workers), result.Backend, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %3d days, %2d workers, %-6s: Cold: %s, Warm: %s\n",
			result.Days, result.Workers, result.Backend, result.ColdTime, result.WarmTime)
	}
}
