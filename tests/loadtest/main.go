package main

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numPrograms  = 40
	numBosses    = 8
)

var channels = []string{"default", "mango", "speedrun", "souls", "retro"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// deaths counts acknowledged !death calls per channel so the final totals
// can be checked against the server.
var deaths sync.Map

func main() {
	fmt.Println("=== counterd Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Programs: %d | Bosses: %d | Channels: %d\n\n", numPrograms, numBosses, len(channels))

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	for _, ch := range channels {
		if r := doResetDeaths(ch); r.err {
			fmt.Printf("FAILED: reset deaths for %s: status %d\n", ch, r.status)
			return
		}
		deaths.Store(ch, new(atomic.Int64))
	}

	fmt.Println("\n--- Phase 1: Chat commands (!uninstall, !death) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.5 {
			return doUninstall(rng)
		}
		return doDeath(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (60% commands, 40% dashboard) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doUninstall(rng)
		case r < 0.60:
			return doDeath(rng)
		case r < 0.75:
			return doGetJSON(rng, "/api/uninstall/all")
		case r < 0.90:
			return doGetJSON(rng, "/api/bosses")
		default:
			return doGetText(rng, "/api/total-deaths")
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (10% commands, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doDeath(rng)
		case r < 0.40:
			return doGetJSON(rng, "/api/uninstall/all")
		case r < 0.60:
			return doGetJSON(rng, "/api/bosses")
		case r < 0.80:
			return doGetText(rng, "/api/deaths")
		default:
			return doGetChannels()
		}
	})

	fmt.Println("\n--- Consistency check ---")
	verifyDeathTotals()
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-26s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 92))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(max(totalOps, 1))*100, rps)
}

func request(method, endpoint, path string, query url.Values, body []byte, want int) (result, []byte) {
	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		return result{endpoint, 0, 0, true}, nil
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}, nil
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}, data
}

func randomChannel(rng *rand.Rand) string {
	return channels[rng.Intn(len(channels))]
}

func doUninstall(rng *rand.Rand) result {
	q := url.Values{
		"channel": {randomChannel(rng)},
		"program": {fmt.Sprintf("Program %d", rng.Intn(numPrograms))},
	}
	r, _ := request(http.MethodGet, "GET /api/uninstall", "/api/uninstall", q, nil, http.StatusOK)
	return r
}

func doDeath(rng *rand.Rand) result {
	ch := randomChannel(rng)
	q := url.Values{
		"channel": {ch},
		"boss":    {fmt.Sprintf("Boss %d", rng.Intn(numBosses))},
	}
	r, _ := request(http.MethodGet, "GET /api/death", "/api/death", q, nil, http.StatusOK)
	if !r.err {
		if counter, ok := deaths.Load(ch); ok {
			counter.(*atomic.Int64).Add(1)
		}
	}
	return r
}

func doGetText(rng *rand.Rand, path string) result {
	q := url.Values{"channel": {randomChannel(rng)}}
	r, _ := request(http.MethodGet, "GET "+path, path, q, nil, http.StatusOK)
	return r
}

func doGetJSON(rng *rand.Rand, path string) result {
	q := url.Values{"channel": {randomChannel(rng)}}
	r, data := request(http.MethodGet, "GET "+path, path, q, nil, http.StatusOK)
	if !r.err && !json.Valid(data) {
		r.err = true
	}
	return r
}

func doGetChannels() result {
	r, _ := request(http.MethodGet, "GET /api/channels", "/api/channels", nil, nil, http.StatusOK)
	return r
}

func doResetDeaths(ch string) result {
	q := url.Values{"channel": {ch}}
	r, _ := request(http.MethodDelete, "DELETE /api/deaths/reset", "/api/deaths/reset", q, nil, http.StatusNoContent)
	return r
}

type bossEntry struct {
	DeathCount int `json:"deathCount"`
}

func verifyDeathTotals() {
	failed := false
	for _, ch := range channels {
		r, data := request(http.MethodGet, "GET /api/bosses", "/api/bosses", url.Values{"channel": {ch}}, nil, http.StatusOK)
		if r.err {
			fmt.Printf("  %-10s FAILED: status %d\n", ch, r.status)
			failed = true
			continue
		}
		var bosses []bossEntry
		if err := json.Unmarshal(data, &bosses); err != nil {
			fmt.Printf("  %-10s FAILED: %s\n", ch, err)
			failed = true
			continue
		}
		got := 0
		for _, b := range bosses {
			got += b.DeathCount
		}
		counter, _ := deaths.Load(ch)
		want := counter.(*atomic.Int64).Load()
		status := "OK"
		if int64(got) != want {
			status = "MISMATCH"
			failed = true
		}
		fmt.Printf("  %-10s acknowledged=%d stored=%d %s\n", ch, want, got, status)
	}
	if failed {
		fmt.Println("  lost or phantom updates detected")
	}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
