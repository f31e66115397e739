package main

import (
	"fmt"
	"io"
	"strconv"

	appcfg "github.com/park285/cheese-engine/internal/config"
	"github.com/park285/cheese-engine/internal/search"
	"github.com/park285/cheese-engine/internal/tt"
	"github.com/park285/cheese-engine/internal/tune"
)

// runBench searches the bench positions to a fixed depth and prints the
// node total, which changes whenever search behaviour does.
func runBench(cfg *appcfg.AppConfig, args []string, out io.Writer) int {
	depth := search.DefaultBenchDepth
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}
	params := tune.Defaults()
	engine := search.NewEngine(tt.New(cfg.HashMB), &params)
	engine.TT.Init()

	res, err := engine.Bench(search.BenchPositions, depth, nil)
	if err != nil {
		fmt.Fprintf(out, "info string bench failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "nodes %d nps %d\n", res.Nodes, res.NPS())
	return 0
}
