package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

type loadMode string

const (
	modeBrowse      loadMode = "browse"
	modeCreateOrder loadMode = "create-order"
	modeDecrement   loadMode = "decrement"
)

type config struct {
	baseURL     string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	price       float64
	seedQty     int
	orderQty    int
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Codes     map[string]int64 `json:"codes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	codes     map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{methods: make(map[string]*methodStats)}
}

// record учитывает вызов. Успехом считается 2xx; в разрезе кодов
// дополнительно хранится код конверта ("00"/"11"/"99"), если он был распознан.
func (c *collector) record(method string, latency time.Duration, httpStatus int, envelopeCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[method]
	if !ok {
		stats = &methodStats{codes: make(map[string]int64)}
		c.methods[method] = stats
	}

	stats.calls++
	if httpStatus >= 200 && httpStatus < 300 {
		stats.success++
	} else {
		stats.failed++
	}
	key := fmt.Sprintf("%d", httpStatus)
	if envelopeCode != "" {
		key = fmt.Sprintf("%d/%s", httpStatus, envelopeCode)
	}
	stats.codes[key]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	scenarioStats := c.methods["scenario"]
	if scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		codesCopy := make(map[string]int64, len(stats.codes))
		for code, count := range stats.codes {
			codesCopy[code] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Codes:     codesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var timeoutValue string
	var durationValue string

	flag.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "inventory service base URL")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modeCreateOrder), "load mode: browse | create-order | decrement")
	flag.Float64Var(&cfg.price, "price", 9.99, "product price for created products")
	flag.IntVar(&cfg.seedQty, "seed-qty", 1_000_000, "stock seeded for decrement mode")
	flag.IntVar(&cfg.orderQty, "order-qty", 1, "units decremented/ordered per scenario")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	switch loadMode(strings.TrimSpace(modeValue)) {
	case modeBrowse, modeCreateOrder, modeDecrement:
		cfg.mode = loadMode(strings.TrimSpace(modeValue))
	default:
		return cfg, fmt.Errorf("unsupported mode: %s", modeValue)
	}

	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.orderQty <= 0 {
		return cfg, errors.New("order-qty must be > 0")
	}
	if cfg.seedQty <= cfg.orderQty {
		return cfg, errors.New("seed-qty must exceed order-qty")
	}
	if strings.TrimSpace(cfg.baseURL) == "" {
		return cfg, errors.New("url is required")
	}

	return cfg, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.baseURL, "/")).
		SetTimeout(cfg.timeout)

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	decrementTarget := ""
	if cfg.mode == modeDecrement {
		decrementTarget, err = seedStockProduct(client, cfg, runID, col)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to seed stock product: %v\n", err)
			os.Exit(1)
		}
	}

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(client, cfg, id, runID, decrementTarget, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// seedStockProduct создаёт товар с большим остатком, по которому
// decrement-сценарии будут конкурировать за списание.
func seedStockProduct(client *resty.Client, cfg config, runID string, col *collector) (string, error) {
	id := fmt.Sprintf("lt-stock-%s", runID)
	body := map[string]any{
		"id":       id,
		"name":     "load test stock",
		"price":    cfg.price,
		"quantity": cfg.seedQty,
	}

	status, code, err := callEnvelope(client, http.MethodPost, "/products/new", body, "CreateProduct", col)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || code != "00" {
		return "", fmt.Errorf("seeding returned status=%d code=%s", status, code)
	}
	return id, nil
}

func runScenario(client *resty.Client, cfg config, index int, runID, decrementTarget string, col *collector) error {
	scenarioStart := time.Now()
	scenarioStatus := http.StatusOK
	defer func() {
		col.record("scenario", time.Since(scenarioStart), scenarioStatus, "")
	}()

	fail := func(status int, err error) error {
		scenarioStatus = status
		return err
	}

	switch cfg.mode {
	case modeBrowse:
		status, _, err := callEnvelope(client, http.MethodGet, "/products/all", nil, "FindAll", col)
		if err != nil || status >= 300 {
			return fail(status, fmt.Errorf("find all: status=%d err=%v", status, err))
		}
		status, _, err = callEnvelope(client, http.MethodGet, "/products/available", nil, "FindAvailable", col)
		// 204 с кодом "11" — валидный ответ пустого склада.
		if err != nil || status >= 300 {
			return fail(status, fmt.Errorf("find available: status=%d err=%v", status, err))
		}
		return nil

	case modeCreateOrder:
		productID := fmt.Sprintf("lt-%s-%d", runID, index)
		createBody := map[string]any{
			"id":       productID,
			"name":     fmt.Sprintf("load product %d", index),
			"price":    cfg.price,
			"quantity": cfg.orderQty,
		}
		status, code, err := callEnvelope(client, http.MethodPost, "/products/new", createBody, "CreateProduct", col)
		if err != nil || status != http.StatusOK || code != "00" {
			return fail(status, fmt.Errorf("create product: status=%d code=%s err=%v", status, code, err))
		}

		orderBody := map[string]any{
			"items": []map[string]any{{
				"product_id": productID,
				"name":       fmt.Sprintf("load product %d", index),
				"price":      cfg.price,
				"quantity":   cfg.orderQty,
			}},
			"total":         cfg.price * float64(cfg.orderQty),
			"customer_name": fmt.Sprintf("load-%s", runID),
		}
		status, code, err = callEnvelope(client, http.MethodPost, "/products/place-order", orderBody, "PlaceOrder", col)
		if err != nil || status != http.StatusOK || code != "00" {
			return fail(status, fmt.Errorf("place order: status=%d code=%s err=%v", status, code, err))
		}
		return nil

	case modeDecrement:
		path := fmt.Sprintf("/products/update-quantity/%s/%d", decrementTarget, cfg.orderQty)
		status, code, err := callEnvelope(client, http.MethodPut, path, nil, "UpdateQuantity", col)
		// 409 означает исчерпание остатка, это штатный исход под нагрузкой.
		if err != nil || (status != http.StatusOK && status != http.StatusConflict) {
			return fail(status, fmt.Errorf("update quantity: status=%d code=%s err=%v", status, code, err))
		}
		return nil
	}

	return nil
}

// callEnvelope выполняет HTTP-вызов и возвращает HTTP-статус и код конверта.
func callEnvelope(client *resty.Client, method, path string, body any, name string, col *collector) (int, string, error) {
	start := time.Now()

	req := client.R()
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	status := 0
	envelopeCode := ""
	if resp != nil {
		status = resp.StatusCode()
		var env envelope
		if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr == nil {
			envelopeCode = env.Code
		}
	}
	col.record(name, time.Since(start), status, envelopeCode)
	return status, envelopeCode, err
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s run=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == "scenario" {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		fmt.Printf(
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
