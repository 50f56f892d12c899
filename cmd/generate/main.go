// Command generate produces a deterministic random-walk CSV bar series for
// demos and backtest experiments.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"
)

const (
	dailyDrift      = 0.0005
	dailyVolatility = 0.02
	startPrice      = 100.0
)

func main() {
	daysFlag := flag.Int("days", 252, "Number of trading days to generate")
	seedFlag := flag.Int64("seed", 42, "Random seed")
	outputFlag := flag.String("output", "sample_data.csv", "Output CSV path")

	flag.Parse()

	if err := generate(*daysFlag, *seedFlag, *outputFlag); err != nil {
		log.Fatalf("Failed to generate data: %v", err)
	}

	log.Printf("Wrote %d bars to %s", *daysFlag, *outputFlag)
}

func generate(days int, seed int64, output string) error {
	rng := rand.New(rand.NewSource(seed))

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "open", "high", "low", "close", "volume", "volatility", "volume_ratio", "liquidity"}
	if err := writer.Write(header); err != nil {
		return err
	}

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	price := startPrice

	volumes := make([]float64, days)
	for i := range volumes {
		volumes[i] = 100000 + rng.Float64()*900000
	}

	avgVolume := 0.0
	for _, v := range volumes {
		avgVolume += v
	}
	avgVolume /= float64(days)

	for i := 0; i < days; i++ {
		price *= math.Exp(dailyDrift + dailyVolatility*rng.NormFloat64())

		high := price * (1 + rng.Float64()*0.01)
		low := price * (1 - rng.Float64()*0.01)
		open := price * (1 + (rng.Float64()-0.5)*0.01)

		record := []string{
			start.AddDate(0, 0, i).Format("2006-01-02"),
			formatFloat(open),
			formatFloat(high),
			formatFloat(low),
			formatFloat(price),
			formatFloat(volumes[i]),
			formatFloat(0.8 + rng.Float64()*0.4),
			formatFloat(volumes[i] / avgVolume),
			formatFloat(0.7 + rng.Float64()*0.3),
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
