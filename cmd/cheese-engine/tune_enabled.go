//go:build tune

package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/board"
	"github.com/park285/cheese-engine/internal/obslog"
	"github.com/park285/cheese-engine/internal/search"
	"github.com/park285/cheese-engine/internal/tune"
)

const (
	tuneEnabled    = true
	tuneStep       = 5
	tuneMaxRounds  = 50
	defaultProfile = "tuned.yaml"
)

type sample struct {
	pos    *board.Position
	result float64 // from white's side: 1, 0.5 or 0
}

// runTune fits the piece values to game results with coordinate descent
// and writes them as a profile: tune <positions.epd> [out.yaml].
func runTune(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cheese-engine tune <positions.epd> [out.yaml]")
		return 2
	}
	out := defaultProfile
	if len(args) > 1 {
		out = args[1]
	}
	samples, err := loadSamples(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tune: %v\n", err)
		return 1
	}

	params := tune.Defaults()
	best := tuneError(samples, &params)
	log := obslog.L()
	log.Info("tune_start", zap.Int("positions", len(samples)), zap.Float64("error", best))

	values := []*int{&params.PawnValue, &params.KnightValue, &params.BishopValue, &params.RookValue, &params.QueenValue}
	for round := 0; round < tuneMaxRounds; round++ {
		improved := false
		for _, v := range values {
			for _, delta := range []int{tuneStep, -tuneStep} {
				*v += delta
				if e := tuneError(samples, &params); e < best {
					best = e
					improved = true
					break
				}
				*v -= delta
			}
		}
		log.Info("tune_round", zap.Int("round", round), zap.Float64("error", best))
		if !improved {
			break
		}
	}

	settings := []tune.Setting{
		{Name: "PawnValue", Value: params.PawnValue},
		{Name: "KnightValue", Value: params.KnightValue},
		{Name: "BishopValue", Value: params.BishopValue},
		{Name: "RookValue", Value: params.RookValue},
		{Name: "QueenValue", Value: params.QueenValue},
	}
	header := fmt.Sprintf("tuned on %d positions, error %.6f", len(samples), best)
	if err := tune.WriteProfile(out, header, settings); err != nil {
		fmt.Fprintf(os.Stderr, "tune: %v\n", err)
		return 1
	}
	fmt.Printf("wrote %s error %.6f\n", out, best)
	return 0
}

func loadSamples(path string) ([]sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []sample
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s, ok := parseSample(sc.Text())
		if ok {
			samples = append(samples, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no usable positions in %s", path)
	}
	return samples, nil
}

// parseSample reads "<fen> [1.0]" or "<epd> c9 \"1-0\";" lines.
func parseSample(line string) (sample, bool) {
	line = strings.TrimSpace(line)
	var result float64
	switch {
	case strings.Contains(line, "1-0"), strings.Contains(line, "[1.0]"):
		result = 1
	case strings.Contains(line, "0-1"), strings.Contains(line, "[0.0]"):
		result = 0
	case strings.Contains(line, "1/2-1/2"), strings.Contains(line, "[0.5]"):
		result = 0.5
	default:
		return sample{}, false
	}
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return sample{}, false
	}
	fen := strings.Join(fields[:4], " ")
	if len(fields) >= 6 && isNumber(fields[4]) && isNumber(fields[5]) {
		fen += " " + fields[4] + " " + fields[5]
	} else {
		fen += " 0 1"
	}
	pos, err := board.ParseFen(fen)
	if err != nil {
		return sample{}, false
	}
	return sample{pos: pos, result: result}, true
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// tuneError is the mean squared distance between results and the win
// probability implied by the static evaluation.
func tuneError(samples []sample, p *tune.Params) float64 {
	var sum float64
	for _, s := range samples {
		eval := search.Evaluate(s.pos, p)
		if s.pos.SideToMove() == board.Black {
			eval = -eval
		}
		d := s.result - sigmoid(float64(eval))
		sum += d * d
	}
	return sum / float64(len(samples))
}

func sigmoid(cp float64) float64 {
	return 1 / (1 + math.Pow(10, -cp/400))
}
