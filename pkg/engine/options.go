package engine

// Options carries every engine tunable that the design treats as a
// runtime toggle rather than a contract: the forward-pruning family,
// the aspiration window widths, and the check-extension policy. Each
// field defaults to the conservative choice a UCI setoption can flip.
type Options struct {
	Hash     int
	OwnBook  bool
	BookFile string
	Contempt int

	ReverseFutility  bool
	NullMovePruning  bool
	NullMoveVerify   bool
	Razoring         bool
	LimitedRazoring  bool
	ExtendedFutility bool
	Futility         bool
	Lmp              bool
	Lmr              bool
	AspirationWindow bool
	AspirationDelta1 int
	AspirationDelta2 int
	UseMTDF          bool

	// ExtendInCheck selects the non-conservative check-extension
	// policy: a move that leaves the opponent in check adds a full ply
	// to the child's depth instead of only inhibiting reductions. Off
	// by default, per the conservative reading of the check-extension
	// open question.
	ExtendInCheck bool
}

func NewOptions() Options {
	return Options{
		Hash:             16,
		OwnBook:          false,
		Contempt:         0,
		ReverseFutility:  true,
		NullMovePruning:  true,
		NullMoveVerify:   true,
		Razoring:         true,
		LimitedRazoring:  true,
		ExtendedFutility: true,
		Futility:         true,
		Lmp:              true,
		Lmr:              true,
		AspirationWindow: true,
		AspirationDelta1: aspirationDelta1,
		AspirationDelta2: aspirationDelta2,
		UseMTDF:          false,
		ExtendInCheck:    false,
	}
}

// Depth thresholds and margins named throughout the main search; kept
// together so every pruning member reads the same constants its option
// toggle gates.
const (
	nmpMinDepth = 2

	razorDepth  = 1
	razorMargin = 300

	limitedRazorDepth = 3
	extFutilityDepth  = 2
	futilityDepth     = 1
	pawnValue         = 100

	lmpMinDepth  = 8
	lmpMinMoves  = 8
	lmrMinDepth  = 3
	lmrMinMoves  = 2
	lmrReduction = 1

	aspirationStartDepth = 5
	aspirationDelta1     = 30
	aspirationDelta2     = 200
)
