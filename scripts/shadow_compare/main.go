// Command shadow_compare replays read traffic against both the legacy exam
// API and this one, and reports response differences. Run it during cutover
// with both stacks pointed at the same database.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Body     string `json:"body,omitempty"`
	Critical bool   `json:"critical"`
}

// defaultTargets cover every read surface plus the overlap probe. Timestamps
// are stripped before comparison, so identical data should match exactly.
var defaultTargets = []target{
	{Method: "GET", Path: "/api/v1/blocks", Critical: true},
	{Method: "GET", Path: "/api/v1/programs", Critical: true},
	{Method: "GET", Path: "/api/v1/subjects", Critical: true},
	{Method: "GET", Path: "/api/v1/students", Critical: false},
	{Method: "GET", Path: "/api/v1/invigilators", Critical: false},
	{Method: "GET", Path: "/api/v1/exams", Critical: true},
	{Method: "GET", Path: "/api/v1/exam-types/MIDTERM/exams", Critical: true},
	{
		Method:   "POST",
		Path:     "/api/v1/overlap-checks",
		Body:     `{"exam_date":"2026-03-10","start_time":"09:00","end_time":"11:00","section_ids":[]}`,
		Critical: true,
	},
}

// Fields that legitimately differ between the two stacks.
var ignoredFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

type result struct {
	target       target
	newStatus    int
	legacyStatus int
	statusMatch  bool
	bodyMatch    bool
	err          error
	newDur       time.Duration
	legacyDur    time.Duration
}

func main() {
	var (
		newBase     string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&newBase, "new-base", "http://localhost:8080", "base URL of this API")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8081", "base URL of the legacy API")
	flag.StringVar(&targetsPath, "targets", "", "optional JSON targets file overriding the built-in set")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("load targets: %v", err)
		}
		targets = loaded
	}

	client := &http.Client{Timeout: timeout}
	breaking := 0
	minor := 0

	for _, tgt := range targets {
		res := compare(client, newBase, legacyBase, tgt)
		report(res)
		if res.err != nil || !res.statusMatch || !res.bodyMatch {
			if tgt.Critical {
				breaking++
			} else {
				minor++
			}
		}
	}

	fmt.Printf("\nbreaking diffs: %d, minor diffs: %d\n", breaking, minor)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var targets []target
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets in %s", path)
	}
	return targets, nil
}

func compare(client *http.Client, newBase, legacyBase string, tgt target) result {
	res := result{target: tgt}

	newBody, newStatus, newDur, err := fetch(client, newBase, tgt)
	if err != nil {
		res.err = fmt.Errorf("new api: %w", err)
		return res
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, tgt)
	if err != nil {
		res.err = fmt.Errorf("legacy api: %w", err)
		return res
	}

	res.newStatus = newStatus
	res.legacyStatus = legacyStatus
	res.newDur = newDur
	res.legacyDur = legacyDur
	res.statusMatch = newStatus == legacyStatus
	res.bodyMatch = bodiesEqual(newBody, legacyBody)
	return res
}

func fetch(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
	var body io.Reader
	if tgt.Body != "" {
		body = strings.NewReader(tgt.Body)
	}
	req, err := http.NewRequest(strings.ToUpper(tgt.Method), strings.TrimRight(base, "/")+tgt.Path, body)
	if err != nil {
		return nil, 0, 0, err
	}
	if tgt.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, resp.StatusCode, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	strip(&av)
	strip(&bv)
	return reflect.DeepEqual(av, bv)
}

// strip removes ignored fields and folds integral floats so 1 and 1.0 compare
// equal across JSON encoders.
func strip(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range val {
			if ignoredFields[k] {
				delete(val, k)
				continue
			}
			child := val[k]
			strip(&child)
			val[k] = child
		}
	case []interface{}:
		for i := range val {
			strip(&val[i])
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(res result) {
	status := "OK"
	switch {
	case res.err != nil:
		status = "ERROR"
	case !res.statusMatch || !res.bodyMatch:
		status = "DIFF"
	}
	fmt.Printf("[%s] %s %s\n", status, res.target.Method, res.target.Path)
	if res.err != nil {
		fmt.Printf("  error: %v\n", res.err)
		return
	}
	fmt.Printf("  new: %d (%s) legacy: %d (%s) status=%t body=%t critical=%t\n",
		res.newStatus, res.newDur, res.legacyStatus, res.legacyDur,
		res.statusMatch, res.bodyMatch, res.target.Critical)
}
