package tune

// Params holds every tunable advertised as a UCI option. One value is owned
// by the engine; the option registry mutates it by name and the search takes
// a copy when a run starts. Fields for heuristics the search does not have,
// such as null move pruning or probcut, are stored and reported but not read.
type Params struct {
	LMRNoisyBase float64
	LMRNoisyDiv  float64
	LMRQuietBase float64
	LMRQuietDiv  float64

	IIRDepth       int
	IIRCutDepth    int
	RFPDepth       int
	RFPBase        int
	RFPHistScore   int
	RFPHistory     int
	NMPFlat        int
	NMPDepth       int
	NMPHist        int
	NMPRBase       int
	NMPRDepth      int
	NMPREvalDiv    int
	NMPREvalMin    int
	ProbCut        int
	ProbCutDepth   int
	ProbCutReturn  int
	LMPImp         int
	LMPNonImp      int
	HistPruneDepth int
	HistPrune      int
	SEEPruneDepth  int
	SEEPruneQ      int
	SEEPruneN      int
	SingExtDepth   int
	SingExtTTDepth int
	SingExtDouble  int
	LMRHist        int
	DeeperBase     int
	DeeperDepth    int

	QSFutility int

	Aspi          int
	AspiScoreDiv  int
	Trend         int
	TrendDiv      float64
	PruneDiv      int
	PruneDepthDiv int

	HistQDiv       int
	HistCDiv       int
	HistNDiv       int
	HistBonusMax   int
	HistBonusBase  int
	HistBonusDepth int
	HistMalusMax   int
	HistMalusBase  int
	HistMalusDepth int

	Tempo              int
	BasePower          int
	NPower             int
	BPower             int
	RPower             int
	QPower             int
	NCPower            int
	BCPower            int
	RCPower            int
	QCPower            int
	Modifier1          int
	Modifier2          int
	Modifier3          int
	Modifier4          int
	Modifier5          int
	Modifier6          int
	Modifier7          int
	Modifier8          int
	PawnScaleBase      int
	PawnScaleX         int
	PawnScaleBothSides int
	OCBSolo            int
	OCBDuo             int

	ScoreMovesLimit int
	MPGood          int
	MPGoodDepth     int
	MPBad           int
	MPBadDepth      int

	// Material, in centipawns. Exposed so profiles produced by the tuner can
	// be loaded back through setoption.
	PawnValue   int
	KnightValue int
	BishopValue int
	RookValue   int
	QueenValue  int
}

// Defaults returns the compiled-in tuning.
func Defaults() Params {
	return Params{
		LMRNoisyBase: 0.20,
		LMRNoisyDiv:  3.35,
		LMRQuietBase: 1.40,
		LMRQuietDiv:  1.80,

		IIRDepth:       4,
		IIRCutDepth:    8,
		RFPDepth:       7,
		RFPBase:        80,
		RFPHistScore:   11000,
		RFPHistory:     9000,
		NMPFlat:        200,
		NMPDepth:       3,
		NMPHist:        8000,
		NMPRBase:       4,
		NMPRDepth:      4,
		NMPREvalDiv:    220,
		NMPREvalMin:    3,
		ProbCut:        200,
		ProbCutDepth:   5,
		ProbCutReturn:  160,
		LMPImp:         2,
		LMPNonImp:      1,
		HistPruneDepth: 3,
		HistPrune:      1024,
		SEEPruneDepth:  7,
		SEEPruneQ:      80,
		SEEPruneN:      20,
		SingExtDepth:   6,
		SingExtTTDepth: 3,
		SingExtDouble:  16,
		LMRHist:        8000,
		DeeperBase:     50,
		DeeperDepth:    4,

		QSFutility: 100,

		Aspi:          12,
		AspiScoreDiv:  8000,
		Trend:         24,
		TrendDiv:      1.50,
		PruneDiv:      10,
		PruneDepthDiv: 3,

		HistQDiv:       5000,
		HistCDiv:       16384,
		HistNDiv:       8192,
		HistBonusMax:   2000,
		HistBonusBase:  80,
		HistBonusDepth: 200,
		HistMalusMax:   1500,
		HistMalusBase:  60,
		HistMalusDepth: 180,

		Tempo:              15,
		BasePower:          0,
		NPower:             28,
		BPower:             20,
		RPower:             40,
		QPower:             80,
		NCPower:            12,
		BCPower:            10,
		RCPower:            20,
		QCPower:            40,
		Modifier1:          0,
		Modifier2:          50,
		Modifier3:          75,
		Modifier4:          88,
		Modifier5:          94,
		Modifier6:          97,
		Modifier7:          99,
		Modifier8:          100,
		PawnScaleBase:      90,
		PawnScaleX:         7,
		PawnScaleBothSides: 14,
		OCBSolo:            50,
		OCBDuo:             70,

		ScoreMovesLimit: -4000,
		MPGood:          -80,
		MPGoodDepth:     4,
		MPBad:           -40,
		MPBadDepth:      2,

		PawnValue:   100,
		KnightValue: 320,
		BishopValue: 330,
		RookValue:   500,
		QueenValue:  950,
	}
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := *p
	return &c
}
