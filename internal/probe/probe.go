package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/obslog"
)

var (
	ErrDisabled        = errors.New("probe disabled")
	ErrTooManyFailures = errors.New("too many failed probes")
	ErrNoAnswer        = errors.New("probe has no answer")
)

// MaxFailures consecutive misses disable probing until ResetFailures.
const MaxFailures = 3

// TBResult is an online tablebase answer for the side to move.
type TBResult struct {
	Move     string `json:"move"`
	Category string `json:"category"`
	WDL      int    `json:"wdl"`
	DTZ      int    `json:"dtz"`
}

// Prober queries the online opening book and the online tablebase. Answers
// are cached in Redis when a cache is attached.
type Prober struct {
	book  *Client
	tb    *Client
	cache *Cache

	failures atomic.Int32
}

// New builds a prober. An empty URL disables that service.
func New(bookURL, tbURL string, cache *Cache, opts ...Option) *Prober {
	p := &Prober{cache: cache}
	if strings.TrimSpace(bookURL) != "" {
		p.book = NewClient(bookURL, opts...)
	}
	if strings.TrimSpace(tbURL) != "" {
		p.tb = NewClient(tbURL, opts...)
	}
	return p
}

func (p *Prober) Failures() int  { return int(p.failures.Load()) }
func (p *Prober) ResetFailures() { p.failures.Store(0) }

func (p *Prober) miss(service string, err error) error {
	n := p.failures.Add(1)
	obslog.L().Info("probe_failed", zap.String("service", service), zap.Int32("failures", n), zap.Error(err))
	return err
}

func (p *Prober) ready(c *Client) error {
	if c == nil {
		return ErrDisabled
	}
	if p.failures.Load() >= MaxFailures {
		return ErrTooManyFailures
	}
	return nil
}

// Book asks the online opening book for the best move in fen.
func (p *Prober) Book(ctx context.Context, fen string) (string, error) {
	if err := p.ready(p.book); err != nil {
		return "", err
	}
	if p.cache != nil {
		if mv, err := p.cache.LoadBookMove(ctx, fen); err == nil && mv != "" {
			p.ResetFailures()
			return mv, nil
		}
	}
	body, err := p.book.getRaw(ctx, map[string]string{"action": "querybest", "board": fen})
	if err != nil {
		return "", p.miss("book", err)
	}
	mv, ok := parseBookAnswer(string(body))
	if !ok {
		return "", p.miss("book", fmt.Errorf("%w: %s", ErrNoAnswer, shorten(strings.TrimSpace(string(body)))))
	}
	p.ResetFailures()
	if p.cache != nil {
		if err := p.cache.SaveBookMove(ctx, fen, mv); err != nil {
			obslog.L().Warn("probe_cache_save_failed", zap.Error(err))
		}
	}
	return mv, nil
}

// parseBookAnswer extracts the move from "move:e2e4", "egtb:..." or
// "search:..." replies.
func parseBookAnswer(body string) (string, bool) {
	body = strings.Trim(body, "\x00 \r\n\t")
	for _, prefix := range []string{"move:", "egtb:", "search:"} {
		if rest, ok := strings.CutPrefix(body, prefix); ok {
			mv := strings.Fields(strings.ReplaceAll(rest, "|", " "))
			if len(mv) > 0 && len(mv[0]) >= 4 {
				return mv[0], true
			}
		}
	}
	return "", false
}

type tbResponse struct {
	Category string `json:"category"`
	DTZ      *int   `json:"dtz"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
	} `json:"moves"`
}

// Tablebase asks the online tablebase for the position.
func (p *Prober) Tablebase(ctx context.Context, fen string) (TBResult, error) {
	if err := p.ready(p.tb); err != nil {
		return TBResult{}, err
	}
	if p.cache != nil {
		if res, err := p.cache.LoadTB(ctx, fen); err == nil && res != nil {
			p.ResetFailures()
			return *res, nil
		}
	}
	var resp tbResponse
	if err := p.tb.getJSON(ctx, map[string]string{"fen": fen}, &resp); err != nil {
		return TBResult{}, p.miss("tablebase", err)
	}
	wdl, known := categoryWDL(resp.Category)
	if !known {
		return TBResult{}, p.miss("tablebase", fmt.Errorf("%w: category %q", ErrNoAnswer, resp.Category))
	}
	// The service answered; "unknown" or a terminal position is not a failure.
	if resp.Category == "unknown" || len(resp.Moves) == 0 || resp.Moves[0].UCI == "" {
		return TBResult{}, fmt.Errorf("%w: category %q", ErrNoAnswer, resp.Category)
	}
	res := TBResult{Move: resp.Moves[0].UCI, Category: resp.Category, WDL: wdl}
	if resp.DTZ != nil {
		res.DTZ = *resp.DTZ
	}
	p.ResetFailures()
	if p.cache != nil {
		if err := p.cache.SaveTB(ctx, fen, res); err != nil {
			obslog.L().Warn("probe_cache_save_failed", zap.Error(err))
		}
	}
	return res, nil
}

// categoryWDL maps a tablebase category to a WDL value. The maybe- and
// syzygy- categories are wins or losses whose 50-move status is uncertain.
func categoryWDL(c string) (int, bool) {
	switch c {
	case "win":
		return 2, true
	case "cursed-win", "maybe-win", "syzygy-win":
		return 1, true
	case "draw", "unknown":
		return 0, true
	case "blessed-loss", "maybe-loss", "syzygy-loss":
		return -1, true
	case "loss":
		return -2, true
	default:
		return 0, false
	}
}

func shorten(s string) string {
	const n = 64
	if len(s) <= n {
		return s
	}
	return s[:n]
}
