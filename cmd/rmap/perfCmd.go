package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfKeyPrefix  = "__rmap_perf"
	perfKeySpread  = 100
	perfNumThreads = 10
	perfSkip       []string
)

var perfCmd = &cobra.Command{
	Use:   "perf",
	Short: "Latency benchmark against a running remote map server",
	RunE:  runPerf,
}

func init() {
	perfCmd.Flags().String("skip", "", wrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	perfCmd.Flags().Int("threads", perfNumThreads, wrapString("Parallelism multiplier: the benchmark runs this many goroutines (each with its own client connection) per GOMAXPROCS"))
	perfCmd.Flags().Int("keys", perfKeySpread, wrapString("How many distinct keys to cycle through"))
	perfCmd.Flags().String("csv", "", wrapString("Optional path to save benchmark results as CSV"))
}

// runPerf benchmarks put/get/remove against a real server. A Client
// serializes every operation behind its own mutex, so each
// b.RunParallel goroutine gets its own Client below rather than
// sharing one — otherwise the benchmark would measure mutex
// contention, not the server's round-trip latency under real
// concurrency.
func runPerf(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	fmt.Println("Latency benchmark for rmap")
	fmt.Println()
	fmt.Println(buildClientConfig().String())
	fmt.Printf("Goroutines: %d per GOMAXPROCS\n\n", perfNumThreads)

	setup, err := newStringClient()
	if err != nil {
		return err
	}
	defer setup.Close()

	results := make(map[string]testing.BenchmarkResult)

	putResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkipPerf("put") {
			return
		}
		getKey, iter := perfKeys("put")
		b.Cleanup(func() {
			iter(func(k string) {
				if _, _, err := setup.Remove(k); err != nil {
					log.Printf("(put) cleanup: error removing key: %v", err)
				}
			})
		})
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			c, err := newStringClient()
			if err != nil {
				log.Printf("(put) error creating client: %v", err)
				return
			}
			defer c.Close()
			counter := 0
			for pb.Next() {
				if _, _, err := c.Put(getKey(counter), "test"); err != nil {
					log.Printf("(put) error: %v", err)
				}
				counter++
			}
		})
	})
	results["put"] = putResult
	printPerfResult("put", putResult)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkipPerf("get") {
			return
		}
		getKey, iter := perfKeys("get")
		iter(func(k string) {
			if _, _, err := setup.Put(k, "test"); err != nil {
				log.Printf("(get) setup: error putting key: %v", err)
			}
		})
		b.Cleanup(func() {
			iter(func(k string) {
				if _, _, err := setup.Remove(k); err != nil {
					log.Printf("(get) cleanup: error removing key: %v", err)
				}
			})
		})
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			c, err := newStringClient()
			if err != nil {
				log.Printf("(get) error creating client: %v", err)
				return
			}
			defer c.Close()
			counter := 0
			for pb.Next() {
				if _, _, err := c.Get(getKey(counter)); err != nil {
					log.Printf("(get) error: %v", err)
				}
				counter++
			}
		})
	})
	results["get"] = getResult
	printPerfResult("get", getResult)

	removeResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkipPerf("remove") {
			return
		}
		getKey, iter := perfKeys("remove")
		iter(func(k string) {
			if _, _, err := setup.Put(k, "test"); err != nil {
				log.Printf("(remove) setup: error putting key: %v", err)
			}
		})
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			c, err := newStringClient()
			if err != nil {
				log.Printf("(remove) error creating client: %v", err)
				return
			}
			defer c.Close()
			counter := 0
			for pb.Next() {
				if _, _, err := c.Remove(getKey(counter)); err != nil {
					log.Printf("(remove) error: %v", err)
				}
				counter++
			}
		})
	})
	results["remove"] = removeResult
	printPerfResult("remove", removeResult)

	snap := setup.LatencySnapshot()
	fmt.Println()
	fmt.Printf("round-trip latency (setup client only): count=%d mean=%s p50=%s p95=%s p99=%s max=%s\n",
		snap.Count,
		time.Duration(snap.MeanNS),
		time.Duration(snap.P50NS),
		time.Duration(snap.P95NS),
		time.Duration(snap.P99NS),
		time.Duration(snap.MaxNS))

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writePerfResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %w", err)
		}
		fmt.Printf("exported results to %s\n", csvPath)
	}
	return nil
}

func shouldSkipPerf(test string) bool {
	for _, skip := range perfSkip {
		if skip == test {
			return true
		}
	}
	return false
}

func perfKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	getKey := func(i int) string { return keys[i%perfKeySpread] }
	iterate := func(fn func(string)) {
		for _, k := range keys {
			fn(k)
		}
	}
	return getKey, iterate
}

func printPerfResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-10sskipped\n", test)
		return
	}
	nsPerOp := math.Max(float64(result.NsPerOp()), 1)
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	fmt.Printf("%-10s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

func writePerfResultsToCSV(path string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped", "Threads", "Keys"}); err != nil {
		return err
	}
	for test, result := range results {
		var nsPerOp, opsPerSec float64
		skipped := "false"
		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}
		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
