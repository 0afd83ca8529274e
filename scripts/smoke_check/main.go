package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Role     string `json:"role"`
	Expect   int    `json:"expect"`
	Envelope bool   `json:"envelope"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target   target
	Status   int
	Duration time.Duration
	Error    error
}

func (r result) ok() bool {
	return r.Error == nil && r.Status == r.Target.Expect
}

func main() {
	var (
		base         string
		targetsPath  string
		staffToken   string
		studentToken string
		timeout      time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "Hostel API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke_check", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&staffToken, "staff-token", os.Getenv("SMOKE_STAFF_TOKEN"), "Access token used for role=staff targets")
	flag.StringVar(&studentToken, "student-token", os.Getenv("SMOKE_STUDENT_TOKEN"), "Access token used for role=student targets")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	tokens := map[string]string{"staff": staffToken, "student": studentToken}
	client := &http.Client{Timeout: timeout}

	var (
		results  []result
		breaking int
		optional int
	)
	for _, t := range targets {
		res := check(client, base, tokens[t.Role], t)
		if !res.ok() {
			if t.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Critical failures: %d, Optional failures: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for i := range file.Targets {
		if file.Targets[i].Expect == 0 {
			file.Targets[i].Expect = http.StatusOK
		}
	}
	return file.Targets, nil
}

func check(client *http.Client, base, token string, tgt target) result {
	res := result{Target: tgt}
	if tgt.Role != "" && token == "" {
		res.Error = fmt.Errorf("no token configured for role %q", tgt.Role)
		return res
	}

	req, err := newRequest(base, token, tgt)
	if err != nil {
		res.Error = err
		return res
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()
	res.Duration = time.Since(start)
	res.Status = resp.StatusCode

	if tgt.Envelope {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			res.Error = fmt.Errorf("read body: %w", err)
			return res
		}
		res.Error = validateEnvelope(body)
	}
	return res
}

func newRequest(base, token string, tgt target) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// validateEnvelope checks the body carries exactly one of data or error.
func validateEnvelope(body []byte) error {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("body is not a JSON object: %w", err)
	}
	data, hasData := env["data"]
	apiErr, hasErr := env["error"]
	hasData = hasData && string(data) != "null"
	hasErr = hasErr && string(apiErr) != "null"
	switch {
	case hasData && hasErr:
		return errors.New("envelope has both data and error")
	case !hasData && !hasErr:
		return errors.New("envelope has neither data nor error")
	}
	return nil
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if !res.ok() {
			status = "FAIL"
		}
		role := res.Target.Role
		if role == "" {
			role = "anonymous"
		}
		fmt.Printf("[%s] %s %s as %s\n", status, res.Target.Method, res.Target.Path, role)
		fmt.Printf("  Status: %d, expected %d (%s)\n", res.Status, res.Target.Expect, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		}
	}
}
