package stratego

// Player is the owner tag of a piece. The wire values match the game client.
type Player string

const (
	Self     Player = "ai"
	Opponent Player = "player"
)

type PieceType string

const (
	Marshal    PieceType = "1"
	General    PieceType = "2"
	Colonel    PieceType = "3"
	Major      PieceType = "4"
	Captain    PieceType = "5"
	Lieutenant PieceType = "6"
	Sergeant   PieceType = "7"
	Miner      PieceType = "8"
	Scout      PieceType = "9"
	Bomb       PieceType = "B"
	Flag       PieceType = "F"
	Spy        PieceType = "S"
)

var pieceNames = map[PieceType]string{
	Marshal:    "Marshal",
	General:    "General",
	Colonel:    "Colonel",
	Major:      "Major",
	Captain:    "Captain",
	Lieutenant: "Lieutenant",
	Sergeant:   "Sergeant",
	Miner:      "Miner",
	Scout:      "Scout",
	Bomb:       "Bomb",
	Flag:       "Flag",
	Spy:        "Spy",
}

// Name returns the human name of the type, or the raw tag for unknown types.
func (t PieceType) Name() string {
	if name, ok := pieceNames[t]; ok {
		return name
	}
	return string(t)
}

// Label is the name with the rank tag for ranked pieces, e.g. "Marshal (1)".
func (t PieceType) Label() string {
	switch t {
	case Bomb, Flag, Spy:
		return t.Name()
	}
	return t.Name() + " (" + string(t) + ")"
}

// Piece is a snapshot of one piece; it never references live game state.
type Piece struct {
	Type   PieceType `json:"type" bson:"type"`
	Player Player    `json:"player" bson:"player"`

	Position `bson:",inline"`
}
