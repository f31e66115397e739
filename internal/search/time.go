package search

import "github.com/park285/cheese-engine/internal/tune"

const moveOverhead = 30

// timeManager turns the clock fields of Limits into a soft target, checked
// between iterations, and a hard ceiling, checked while searching.
type timeManager struct {
	limits  *Limits
	optimal int64
	maximum int64
}

func newTimeManager(l *Limits) *timeManager {
	tm := &timeManager{limits: l}
	switch {
	case l.MoveTime > 0:
		tm.maximum = int64(max(l.MoveTime-moveOverhead, 1))
		tm.optimal = tm.maximum
	case l.Time > 0:
		mtg := l.MovesToGo
		if mtg <= 0 || mtg > 50 {
			mtg = 50
		}
		budget := l.Time/mtg + l.Inc*3/4
		ceiling := max(l.Time-moveOverhead-l.Time/20, 1)
		tm.optimal = int64(min(budget, ceiling))
		tm.maximum = int64(min(budget*5, ceiling))
	}
	return tm
}

func (tm *timeManager) enabled() bool { return tm.limits.TimeLimit && tm.maximum > 0 }

func (tm *timeManager) outOfTime() bool {
	return tm.enabled() && tm.limits.Elapsed() >= tm.maximum
}

// finishIteration reports whether another iteration should start. A falling
// score stretches the soft target by Trend/TrendDiv.
func (tm *timeManager) finishIteration(p *tune.Params, prevScore, score int) bool {
	if !tm.enabled() || tm.limits.MoveTime > 0 {
		return !tm.outOfTime()
	}
	target := float64(tm.optimal)
	if prevScore > -Infinite && prevScore-score > p.Trend && p.TrendDiv > 0 {
		target *= 1 + float64(prevScore-score-p.Trend)/(float64(p.Trend)*p.TrendDiv*10+1)
	}
	if target > float64(tm.maximum) {
		target = float64(tm.maximum)
	}
	return float64(tm.limits.Elapsed()) < target*0.6
}
