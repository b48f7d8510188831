// Package benchmark drives concurrent load against the HTTP API and
// summarises latency per endpoint.
package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// APIBenchmark 并发压测配置
type APIBenchmark struct {
	BaseURL     string
	Concurrency int
	Requests    int
	AuthToken   string
	Client      *http.Client
}

// BenchmarkResult 单个接口的压测结果
type BenchmarkResult struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"totalRequests"`
	SuccessCount   int           `json:"successCount"`
	FailureCount   int           `json:"failureCount"`
	TotalTime      time.Duration `json:"totalTime"`
	AverageTime    time.Duration `json:"averageTime"`
	MinTime        time.Duration `json:"minTime"`
	MaxTime        time.Duration `json:"maxTime"`
	P95Time        time.Duration `json:"p95Time"`
	RequestsPerSec float64       `json:"requestsPerSec"`
	StatusCodes    map[int]int   `json:"statusCodes"`
	Errors         []string      `json:"errors"`
}

type requestResult struct {
	duration   time.Duration
	statusCode int
	err        error
}

func NewAPIBenchmark(baseURL string, concurrency, requests int, authToken string) *APIBenchmark {
	if concurrency < 1 {
		concurrency = 1
	}
	return &APIBenchmark{
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Requests:    requests,
		AuthToken:   authToken,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Authenticate 登录并返回 JWT
func (b *APIBenchmark) Authenticate(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/accounts/authenticate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Message string `json:"message"`
		Data    struct {
			JWTToken string `json:"jwtToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode authenticate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authenticate failed (%d): %s", resp.StatusCode, out.Message)
	}
	if out.Data.JWTToken == "" {
		return "", errors.New("authenticate returned no token")
	}
	return out.Data.JWTToken, nil
}

func (b *APIBenchmark) RunGET(ctx context.Context, path string) *BenchmarkResult {
	return b.run(ctx, http.MethodGet, b.BaseURL+path, nil)
}

func (b *APIBenchmark) RunPOST(ctx context.Context, path string, payload interface{}) *BenchmarkResult {
	return b.runJSON(ctx, http.MethodPost, path, payload)
}

func (b *APIBenchmark) runJSON(ctx context.Context, method, path string, payload interface{}) *BenchmarkResult {
	url := b.BaseURL + path
	data, err := json.Marshal(payload)
	if err != nil {
		return &BenchmarkResult{URL: url, Method: method, Errors: []string{fmt.Sprintf("encode payload: %v", err)}}
	}
	return b.run(ctx, method, url, data)
}

// run 以 Concurrency 个 worker 发出 Requests 个请求
func (b *APIBenchmark) run(ctx context.Context, method, url string, payload []byte) *BenchmarkResult {
	jobs := make(chan struct{})
	results := make(chan requestResult, b.Requests)
	var wg sync.WaitGroup

	startTime := time.Now()
	for i := 0; i < b.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- b.do(ctx, method, url, payload)
			}
		}()
	}

feed:
	for i := 0; i < b.Requests; i++ {
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	return summarize(method, url, b.Concurrency, b.Requests, time.Since(startTime), results)
}

func (b *APIBenchmark) do(ctx context.Context, method, url string, payload []byte) requestResult {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return requestResult{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if b.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.AuthToken)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return requestResult{err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return requestResult{duration: time.Since(start), statusCode: resp.StatusCode}
}

func summarize(method, url string, concurrency, total int, elapsed time.Duration, results <-chan requestResult) *BenchmarkResult {
	r := &BenchmarkResult{
		URL:           url,
		Method:        method,
		Concurrency:   concurrency,
		TotalRequests: total,
		TotalTime:     elapsed,
		StatusCodes:   make(map[int]int),
	}

	var durations []time.Duration
	var sum time.Duration
	for res := range results {
		if res.err != nil {
			r.FailureCount++
			r.Errors = append(r.Errors, res.err.Error())
			continue
		}
		durations = append(durations, res.duration)
		sum += res.duration
		r.StatusCodes[res.statusCode]++
		if res.statusCode >= 200 && res.statusCode < 300 {
			r.SuccessCount++
		} else {
			r.FailureCount++
		}
	}
	// 被取消而未发出的请求计为失败
	if missing := total - r.SuccessCount - r.FailureCount; missing > 0 {
		r.FailureCount += missing
	}

	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		r.MinTime = durations[0]
		r.MaxTime = durations[len(durations)-1]
		r.AverageTime = sum / time.Duration(len(durations))
		r.P95Time = durations[(len(durations)*95-1)/100]
	}
	if elapsed > 0 {
		r.RequestsPerSec = float64(len(durations)) / elapsed.Seconds()
	}
	return r
}

// SuccessRate 成功率百分比
func (r *BenchmarkResult) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.TotalRequests) * 100
}

// Log 输出压测结果
func (r *BenchmarkResult) Log() {
	applog.Info("%s %s: %d/%d ok, %.2f req/s, avg=%s p95=%s min=%s max=%s codes=%v",
		r.Method, r.URL, r.SuccessCount, r.TotalRequests, r.RequestsPerSec,
		r.AverageTime, r.P95Time, r.MinTime, r.MaxTime, r.StatusCodes)
	for i, err := range r.Errors {
		if i >= 5 {
			applog.Warning("... %d more errors", len(r.Errors)-5)
			break
		}
		applog.Warning("%s", err)
	}
}
