package main

import (
	"bytes"
	"strings"
	"testing"

	appcfg "github.com/park285/cheese-engine/internal/config"
)

func TestRunBenchPrintsTotals(t *testing.T) {
	var out bytes.Buffer
	cfg := &appcfg.AppConfig{HashMB: 4}
	if code := runBench(cfg, []string{"1"}, &out); code != 0 {
		t.Fatalf("runBench exit %d: %s", code, out.String())
	}
	fields := strings.Fields(out.String())
	if len(fields) != 4 || fields[0] != "nodes" || fields[2] != "nps" || fields[1] == "0" {
		t.Fatalf("unexpected bench output %q", out.String())
	}
}
