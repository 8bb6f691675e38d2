package matching_test

import (
	"testing"
	"time"

	"github.com/PxPatel/lob-simulator/internal/matching"
)

// seedBook rests levels orders on each side around 100
func seedBook(b *testing.B, engine *matching.Engine, levels int) {
	b.Helper()
	now := time.Unix(0, 0)
	for i := 0; i < levels; i++ {
		if _, err := engine.AddLimitOrder(matching.Buy, 10, 99.0-float64(i)*0.01, now); err != nil {
			b.Fatal(err)
		}
		if _, err := engine.AddLimitOrder(matching.Sell, 10, 101.0+float64(i)*0.01, now); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAddLimitOrder benchmarks resting orders across many levels
func BenchmarkAddLimitOrder(b *testing.B) {
	engine := matching.NewEngine(matching.WithTradeCapacity(0))
	now := time.Unix(0, 0)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		price := 90.0 + float64(i%1000)*0.01
		engine.AddLimitOrder(matching.Buy, 10, price, now)
	}

	addsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(addsPerSec, "adds/sec")
}

// BenchmarkBestBid benchmarks best price lookups on a deep book
func BenchmarkBestBid(b *testing.B) {
	engine := matching.NewEngine()
	seedBook(b, engine, 1000)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		engine.BestBid()
	}

	lookupsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(lookupsPerSec, "lookups/sec")
}

// BenchmarkMarketOrder benchmarks single-level sweeps against a replenished book
func BenchmarkMarketOrder(b *testing.B) {
	engine := matching.NewEngine(matching.WithTradeCapacity(b.N))
	seedBook(b, engine, 100)
	now := time.Unix(0, 0)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		engine.AddLimitOrder(matching.Sell, 5, 100.5, now)
		engine.MarketOrder(matching.Buy, 5, now)
	}

	matchesPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(matchesPerSec, "matches/sec")
}

// BenchmarkCancelOrder benchmarks index lookups plus level removal
func BenchmarkCancelOrder(b *testing.B) {
	engine := matching.NewEngine()
	now := time.Unix(0, 0)
	ids := make([]uint64, b.N)
	for i := 0; i < b.N; i++ {
		order, err := engine.AddLimitOrder(matching.Sell, 1, 100.0+float64(i%500)*0.01, now)
		if err != nil {
			b.Fatal(err)
		}
		ids[i] = order.ID
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		engine.CancelOrder(ids[i])
	}

	cancelsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(cancelsPerSec, "cancels/sec")
}

// BenchmarkDepth benchmarks top-of-book snapshots
func BenchmarkDepth(b *testing.B) {
	engine := matching.NewEngine()
	seedBook(b, engine, 1000)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		engine.Depth(10)
	}

	snapshotsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(snapshotsPerSec, "snapshots/sec")
}
