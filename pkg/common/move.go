package common

// Move is a move packed into a 32-bit integer:
// from(6) | to(6) | movingPiece(3) | capturedPiece(3) | promotion(3).
// MoveEmpty (the zero value) doubles as both the sentinel "no move" and
// the encoding MakeMove uses for a null move.
type Move int32

const MoveEmpty Move = 0

// MoveType classifies a Move for callers that need to distinguish
// castling/promotion without re-deriving it from the board. It is
// derived, never stored: spec keeps the packed encoding compact.
// Type never reports EnPassantMove, since that needs the position; use
// IsEnPassant for it.
type MoveType int

const (
	NormalMove MoveType = iota
	PromotionMove
	EnPassantMove
	CastlingMove
	NullMove
)

func makeMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(from ^ (to << 6) ^ (movingPiece << 12) ^ (capturedPiece << 15))
}

func makePawnMove(from, to, capturedPiece, promotion int) Move {
	return Move(from ^ (to << 6) ^ (Pawn << 12) ^ (capturedPiece << 15) ^ (promotion << 18))
}

func (m Move) From() int {
	return int(m & 63)
}

func (m Move) To() int {
	return int((m >> 6) & 63)
}

func (m Move) MovingPiece() int {
	return int((m >> 12) & 7)
}

func (m Move) CapturedPiece() int {
	return int((m >> 15) & 7)
}

func (m Move) Promotion() int {
	return int((m >> 18) & 7)
}

// Type derives the move's category from its packed fields and the
// castling sentinels; it never needs the board.
func (m Move) Type() MoveType {
	if m == MoveEmpty {
		return NullMove
	}
	if m.Promotion() != Empty {
		return PromotionMove
	}
	if m.MovingPiece() == King && AbsDelta(File(m.From()), File(m.To())) == 2 {
		return CastlingMove
	}
	return NormalMove
}

// IsEnPassant reports whether move m, played from position p, is an
// en-passant capture. Needs the board because the packed encoding alone
// cannot distinguish it from an ordinary diagonal pawn capture.
func (m Move) IsEnPassant(p *Position) bool {
	return m.MovingPiece() == Pawn && m.CapturedPiece() == Pawn && m.To() == p.EpSquare
}

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var sPromotion = ""
	if m.Promotion() != Empty {
		sPromotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + sPromotion
}

// Equal is plain value equality; kept as a named method so call sites
// that compare moves read as intent rather than an opaque `==`.
func (m Move) Equal(other Move) bool {
	return m == other
}

// OrderedMove pairs a move with a sort key used by the move ordering
// stages in pkg/engine; it lives here because the generator fills it
// directly to avoid an extra allocation per ply.
type OrderedMove struct {
	Move Move
	Key  int32
}
