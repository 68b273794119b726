// simulate drives a running calendar-gateway with concurrent read and
// mutation traffic and prints latency percentiles per operation. It is a
// smoke and load tool, not a benchmark.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type SimConfig struct {
	GatewayBaseURL string
	Duration       time.Duration
	Workers        int
}

type gridResponse struct {
	Cells []struct {
		Appointments []struct {
			ID string `json:"id"`
		} `json:"appointments"`
	} `json:"cells"`
	MonthCells []struct {
		Appointments []struct {
			ID string `json:"id"`
		} `json:"appointments"`
	} `json:"monthCells"`
}

type OperationMetrics struct {
	Total   int64
	Success int64
	Client  int64 // 4xx: validation rejections, not-found
	Error   int64

	mu        sync.Mutex
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err != nil || status >= 500:
		atomic.AddInt64(&om.Error, 1)
	case status >= 400:
		atomic.AddInt64(&om.Client, 1)
	default:
		atomic.AddInt64(&om.Success, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) percentile(p float64) time.Duration {
	om.mu.Lock()
	defer om.mu.Unlock()
	if len(om.Latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(om.Latencies))
	copy(sorted, om.Latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

type Simulator struct {
	cfg     SimConfig
	http    *http.Client
	apptIDs []string
	rng     *rand.Rand
	rngMu   sync.Mutex

	grids    OperationMetrics
	panels   OperationMetrics
	notes    OperationMetrics
	statuses OperationMetrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := SimConfig{
		GatewayBaseURL: getenv("GATEWAY_BASE_URL", "http://127.0.0.1:8080"),
		Duration:       getenvDuration("SIM_DURATION", 30*time.Second),
		Workers:        getenvInt("SIM_WORKERS", 8),
	}

	sim := &Simulator{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	log.Printf("collecting appointment IDs from %s", cfg.GatewayBaseURL)
	if err := sim.collectIDs(); err != nil {
		log.Fatalf("collect appointment IDs: %v", err)
	}
	log.Printf("found %d appointments, running %d workers for %s", len(sim.apptIDs), cfg.Workers, cfg.Duration)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sim.worker(ctx)
		}()
	}
	wg.Wait()

	sim.report()
}

func (s *Simulator) collectIDs() error {
	// One month grid plus the surrounding weeks covers the seeded window.
	dates := []string{
		time.Now().Format("2006-01-02"),
		time.Now().AddDate(0, 0, 14).Format("2006-01-02"),
	}
	seen := map[string]bool{}

	for _, d := range dates {
		var grid gridResponse
		status, err := s.getJSON("/calendar/grid?view=month&date="+d, &grid)
		if err != nil || status != http.StatusOK {
			return fmt.Errorf("grid fetch status=%d err=%v", status, err)
		}
		for _, c := range grid.MonthCells {
			for _, a := range c.Appointments {
				if !seen[a.ID] {
					seen[a.ID] = true
					s.apptIDs = append(s.apptIDs, a.ID)
				}
			}
		}
	}
	if len(s.apptIDs) == 0 {
		return fmt.Errorf("no appointments visible; seed the stub first")
	}
	return nil
}

func (s *Simulator) worker(ctx context.Context) {
	views := []string{"day", "week", "month"}
	reasons := []string{"patient_unreachable", "patient_rescheduled", "transport_issue", "other"}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch s.roll(100) {
		case 0, 1, 2, 3, 4:
			// absent without a reason, the gateway rejects it before any write
			id := s.randomID()
			s.timed(&s.statuses, http.MethodPost, "/appointments/"+id+"/status",
				`{"status": "absent"}`)
		default:
		}

		n := s.roll(100)
		switch {
		case n < 50:
			view := views[s.roll(len(views))]
			offset := s.roll(40) - 20
			date := time.Now().AddDate(0, 0, offset).Format("2006-01-02")
			s.timed(&s.grids, http.MethodGet, "/calendar/grid?view="+view+"&date="+date, "")
		case n < 70:
			s.timed(&s.panels, http.MethodGet, "/appointments/"+s.randomID()+"/panel", "")
		case n < 85:
			body, _ := json.Marshal(map[string]string{
				"notes": fmt.Sprintf("sim note %d", s.roll(100000)),
			})
			s.timed(&s.notes, http.MethodPut, "/appointments/"+s.randomID()+"/notes", string(body))
		default:
			reason := reasons[s.roll(len(reasons))]
			body, _ := json.Marshal(map[string]string{
				"status": "no_show",
				"reason": reason,
			})
			s.timed(&s.statuses, http.MethodPost, "/appointments/"+s.randomID()+"/status", string(body))
		}
	}
}

func (s *Simulator) timed(m *OperationMetrics, method, path, body string) {
	start := time.Now()
	status, err := s.call(method, path, body)
	m.Record(time.Since(start), status, err)
}

func (s *Simulator) call(method, path, body string) (int, error) {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, s.cfg.GatewayBaseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (s *Simulator) getJSON(path string, out any) (int, error) {
	resp, err := s.http.Get(s.cfg.GatewayBaseURL + path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) randomID() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.apptIDs[s.rng.Intn(len(s.apptIDs))]
}

func (s *Simulator) roll(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *Simulator) report() {
	fmt.Println()
	fmt.Println("operation     total  success  4xx   error  p50       p95       p99")
	for _, row := range []struct {
		name string
		m    *OperationMetrics
	}{
		{"grid", &s.grids},
		{"panel", &s.panels},
		{"notes", &s.notes},
		{"status", &s.statuses},
	} {
		fmt.Printf("%-12s %6d %8d %5d %6d  %-9s %-9s %-9s\n",
			row.name,
			atomic.LoadInt64(&row.m.Total),
			atomic.LoadInt64(&row.m.Success),
			atomic.LoadInt64(&row.m.Client),
			atomic.LoadInt64(&row.m.Error),
			row.m.percentile(0.50).Round(time.Millisecond),
			row.m.percentile(0.95).Round(time.Millisecond),
			row.m.percentile(0.99).Round(time.Millisecond),
		)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
