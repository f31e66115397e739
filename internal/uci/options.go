package uci

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/obslog"
	"github.com/park285/cheese-engine/internal/tune"
)

type Kind int

const (
	KindSpin Kind = iota
	// KindFloat is advertised as a spin holding the value times 100.
	KindFloat
	KindCheck
	KindString
)

const (
	tuneMin = -100000
	tuneMax = 100000
)

// Option binds a protocol option name to a storage location. Exactly one of
// Int, Float, Bool or Str is set, matching Kind.
type Option struct {
	Name     string
	Kind     Kind
	Min, Max int

	Int   *int
	Float *float64
	Bool  *bool
	Str   *string

	// Clamp limits spin values to [Min, Max]. Other numeric options accept
	// anything.
	Clamp bool
	// OnSet runs after a value was stored.
	OnSet func()
}

// Registry is the ordered option table. Entries are added once and never
// removed.
type Registry struct {
	opts   []*Option
	byName map[string]*Option
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Option{}}
}

func (r *Registry) Add(o Option) {
	opt := o
	r.opts = append(r.opts, &opt)
	r.byName[opt.Name] = &opt
}

func (r *Registry) Options() []*Option { return r.opts }

// Find matches name exactly, then falls back to the first option, in
// declaration order, whose name is a prefix of the given one.
func (r *Registry) Find(name string) *Option {
	if o, ok := r.byName[name]; ok {
		return o
	}
	for _, o := range r.opts {
		if strings.HasPrefix(name, o.Name) {
			return o
		}
	}
	return nil
}

// Assign parses value according to the option kind and stores it.
func (r *Registry) Assign(name, value string) bool {
	o := r.Find(name)
	if o == nil {
		return false
	}
	switch o.Kind {
	case KindSpin:
		n := atoi(value)
		if o.Clamp {
			n = min(max(n, o.Min), o.Max)
		}
		*o.Int = n
	case KindFloat:
		*o.Float = float64(atoi(value)) / 100
	case KindCheck:
		*o.Bool = strings.HasPrefix(value, "true")
	case KindString:
		if value == "<empty>" {
			value = ""
		}
		*o.Str = value
	}
	if o.OnSet != nil {
		o.OnSet()
	}
	obslog.L().Debug("option_set", zap.String("name", o.Name), zap.String("value", value))
	return true
}

// Set handles a full "setoption name <name> value <value>" line.
func (r *Registry) Set(line string) bool {
	name, value := splitSetOption(line)
	return r.Assign(name, value)
}

func splitSetOption(line string) (name, value string) {
	line = strings.TrimRight(line, "\r\n")
	i := strings.Index(line, "name ")
	if i < 0 {
		return "", ""
	}
	rest := line[i+len("name "):]
	name = rest
	if j := strings.Index(rest, " value"); j >= 0 {
		name = rest[:j]
		value = strings.TrimLeft(rest[j+len(" value"):], " ")
	}
	return strings.TrimSpace(name), value
}

// ApplyProfile assigns tuned values through the same parsing as setoption.
// Names that match nothing are returned.
func (r *Registry) ApplyProfile(settings []tune.Setting) []string {
	var unknown []string
	for _, s := range settings {
		if !r.Assign(s.Name, strconv.Itoa(s.Value)) {
			unknown = append(unknown, s.Name)
		}
	}
	return unknown
}

// Describe writes one option line per entry in declaration order.
func (r *Registry) Describe(w io.Writer) {
	for _, o := range r.opts {
		fmt.Fprintln(w, o.describe())
	}
}

func (o *Option) describe() string {
	switch o.Kind {
	case KindFloat:
		return fmt.Sprintf("option name %s type spin default %d min %d max %d",
			o.Name, int(math.Round(*o.Float*100)), o.Min, o.Max)
	case KindCheck:
		return fmt.Sprintf("option name %s type check default %t", o.Name, *o.Bool)
	case KindString:
		def := *o.Str
		if def == "" {
			def = "<empty>"
		}
		return fmt.Sprintf("option name %s type string default %s", o.Name, def)
	default:
		return fmt.Sprintf("option name %s type spin default %d min %d max %d", o.Name, *o.Int, o.Min, o.Max)
	}
}

func tuneSpin(name string, v *int) Option {
	return Option{Name: name, Kind: KindSpin, Min: tuneMin, Max: tuneMax, Int: v}
}

func tuneFloat(name string, v *float64) Option {
	return Option{Name: name, Kind: KindFloat, Min: tuneMin, Max: tuneMax, Float: v}
}

// addTuning registers every search and evaluation parameter.
func addTuning(r *Registry, p *tune.Params) {
	for _, o := range []Option{
		tuneFloat("LMRNoisyBase", &p.LMRNoisyBase),
		tuneFloat("LMRNoisyDiv", &p.LMRNoisyDiv),
		tuneFloat("LMRQuietBase", &p.LMRQuietBase),
		tuneFloat("LMRQuietDiv", &p.LMRQuietDiv),

		tuneSpin("IIRDepth", &p.IIRDepth),
		tuneSpin("IIRCutDepth", &p.IIRCutDepth),
		tuneSpin("RFPDepth", &p.RFPDepth),
		tuneSpin("RFPBase", &p.RFPBase),
		tuneSpin("RFPHistScore", &p.RFPHistScore),
		tuneSpin("RFPHistory", &p.RFPHistory),
		tuneSpin("NMPFlat", &p.NMPFlat),
		tuneSpin("NMPDepth", &p.NMPDepth),
		tuneSpin("NMPHist", &p.NMPHist),
		tuneSpin("NMPRBase", &p.NMPRBase),
		tuneSpin("NMPRDepth", &p.NMPRDepth),
		tuneSpin("NMPREvalDiv", &p.NMPREvalDiv),
		tuneSpin("NMPREvalMin", &p.NMPREvalMin),
		tuneSpin("ProbCut", &p.ProbCut),
		tuneSpin("ProbCutDepth", &p.ProbCutDepth),
		tuneSpin("ProbCutReturn", &p.ProbCutReturn),
		tuneSpin("LMPImp", &p.LMPImp),
		tuneSpin("LMPNonImp", &p.LMPNonImp),
		tuneSpin("HistPruneDepth", &p.HistPruneDepth),
		tuneSpin("HistPrune", &p.HistPrune),
		tuneSpin("SEEPruneDepth", &p.SEEPruneDepth),
		tuneSpin("SEEPruneQ", &p.SEEPruneQ),
		tuneSpin("SEEPruneN", &p.SEEPruneN),
		tuneSpin("SingExtDepth", &p.SingExtDepth),
		tuneSpin("SingExtTTDepth", &p.SingExtTTDepth),
		tuneSpin("SingExtDouble", &p.SingExtDouble),
		tuneSpin("LMRHist", &p.LMRHist),
		tuneSpin("DeeperBase", &p.DeeperBase),
		tuneSpin("DeeperDepth", &p.DeeperDepth),

		tuneSpin("QSFutility", &p.QSFutility),

		tuneSpin("Aspi", &p.Aspi),
		tuneSpin("AspiScoreDiv", &p.AspiScoreDiv),
		tuneSpin("Trend", &p.Trend),
		tuneFloat("TrendDiv", &p.TrendDiv),
		tuneSpin("PruneDiv", &p.PruneDiv),
		tuneSpin("PruneDepthDiv", &p.PruneDepthDiv),

		tuneSpin("HistQDiv", &p.HistQDiv),
		tuneSpin("HistCDiv", &p.HistCDiv),
		tuneSpin("HistNDiv", &p.HistNDiv),
		tuneSpin("HistBonusMax", &p.HistBonusMax),
		tuneSpin("HistBonusBase", &p.HistBonusBase),
		tuneSpin("HistBonusDepth", &p.HistBonusDepth),
		tuneSpin("HistMalusMax", &p.HistMalusMax),
		tuneSpin("HistMalusBase", &p.HistMalusBase),
		tuneSpin("HistMalusDepth", &p.HistMalusDepth),

		tuneSpin("Tempo", &p.Tempo),
		tuneSpin("BasePower", &p.BasePower),
		tuneSpin("NPower", &p.NPower),
		tuneSpin("BPower", &p.BPower),
		tuneSpin("RPower", &p.RPower),
		tuneSpin("QPower", &p.QPower),
		tuneSpin("NCPower", &p.NCPower),
		tuneSpin("BCPower", &p.BCPower),
		tuneSpin("RCPower", &p.RCPower),
		tuneSpin("QCPower", &p.QCPower),
		tuneSpin("Modifier1", &p.Modifier1),
		tuneSpin("Modifier2", &p.Modifier2),
		tuneSpin("Modifier3", &p.Modifier3),
		tuneSpin("Modifier4", &p.Modifier4),
		tuneSpin("Modifier5", &p.Modifier5),
		tuneSpin("Modifier6", &p.Modifier6),
		tuneSpin("Modifier7", &p.Modifier7),
		tuneSpin("Modifier8", &p.Modifier8),
		tuneSpin("PawnScaleBase", &p.PawnScaleBase),
		tuneSpin("PawnScaleX", &p.PawnScaleX),
		tuneSpin("PawnScaleBothSides", &p.PawnScaleBothSides),
		tuneSpin("OCBSolo", &p.OCBSolo),
		tuneSpin("OCBDuo", &p.OCBDuo),

		tuneSpin("ScoreMovesLimit", &p.ScoreMovesLimit),
		tuneSpin("MPGood", &p.MPGood),
		tuneSpin("MPGoodDepth", &p.MPGoodDepth),
		tuneSpin("MPBad", &p.MPBad),
		tuneSpin("MPBadDepth", &p.MPBadDepth),

		tuneSpin("PawnValue", &p.PawnValue),
		tuneSpin("KnightValue", &p.KnightValue),
		tuneSpin("BishopValue", &p.BishopValue),
		tuneSpin("RookValue", &p.RookValue),
		tuneSpin("QueenValue", &p.QueenValue),
	} {
		r.Add(o)
	}
}
