package main

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestServeMetrics(t *testing.T) {
	addr, stop, err := serveMetrics("127.0.0.1:0")
	if err != nil {
		t.Fatalf("serveMetrics: %v", err)
	}
	defer stop()

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "bxls_parse_cache_lookups_total") && !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("unexpected metrics body:\n%s", body)
	}
}
