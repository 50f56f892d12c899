package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"

	backtestengine "github.com/rxtech-lab/costsim/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/costsim/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/costsim/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/costsim/internal/logger"
	"github.com/rxtech-lab/costsim/internal/metrics"
	"github.com/rxtech-lab/costsim/internal/strategy"
	"github.com/rxtech-lab/costsim/internal/types"
)

func main() {
	configFlag := flag.String("config", "", "Path to engine config YAML (defaults apply when empty)")
	dataFlag := flag.String("data", "", "Path to CSV bar data (required)")
	strategyConfigFlag := flag.String("strategy-config", "", "Path to strategy config YAML")
	outputFlag := flag.String("output", "results", "Output directory")
	riskFreeFlag := flag.Float64("risk-free", metrics.DefaultRiskFreeRate, "Annual risk-free rate for metrics")

	flag.Parse()

	if *dataFlag == "" {
		log.Fatalf("Error: --data flag is required")
	}

	engineConfig := ""

	if *configFlag != "" {
		content, err := os.ReadFile(*configFlag)
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}

		engineConfig = string(content)
	}

	strategyConfig := ""

	if *strategyConfigFlag != "" {
		content, err := os.ReadFile(*strategyConfigFlag)
		if err != nil {
			log.Fatalf("Failed to read strategy config: %v", err)
		}

		strategyConfig = string(content)
	}

	bars, err := loadBars(*dataFlag)
	if err != nil {
		log.Fatalf("Failed to load bars: %v", err)
	}

	backtester := enginev1.NewBacktestEngineV1()
	if err := backtester.Initialize(engineConfig); err != nil {
		log.Fatalf("Failed to initialize backtest engine: %v", err)
	}

	smaStrategy := strategy.NewSMACrossover()
	if err := smaStrategy.Initialize(strategyConfig); err != nil {
		log.Fatalf("Failed to initialize strategy: %v", err)
	}

	bar := progressbar.Default(int64(len(bars)))
	onBar := optional.Some[backtestengine.OnBarCallback](func(current int, total int) {
		bar.Set(current)
	})

	result, err := backtester.Run(bars, smaStrategy, onBar)
	if err != nil {
		log.Fatalf("Failed to run backtest: %v", err)
	}

	report := metrics.NewPerformanceMetrics(result, *riskFreeFlag).CalculateAll()

	if err := writeOutputs(*outputFlag, result, report); err != nil {
		log.Fatalf("Failed to write outputs: %v", err)
	}

	log.Printf("Run %s done: %d trades, total return %.2f%%, written to %s",
		result.RunID, result.NumTrades, result.TotalReturnPct, *outputFlag)
}

func writeOutputs(outputDir string, result types.Result, report metrics.Report) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	if err := types.WriteResult(filepath.Join(outputDir, "results.yaml"), result); err != nil {
		return err
	}

	if err := metrics.WriteReport(filepath.Join(outputDir, "metrics.yaml"), report); err != nil {
		return err
	}

	writer := writers.NewResultsWriter(filepath.Join(outputDir, "results.duckdb"), logger.NewNopLogger())
	if err := writer.Initialize(); err != nil {
		return err
	}
	defer writer.Close()

	return writer.WriteResult(result)
}
