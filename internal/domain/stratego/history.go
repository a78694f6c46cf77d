package stratego

type BattleRecord struct {
	Attacker Piece  `json:"attacker" bson:"attacker"`
	Defender Piece  `json:"defender" bson:"defender"`
	Winner   Player `json:"winner" bson:"winner"`
}

type MoveHistoryEntry struct {
	Player Player   `json:"player" bson:"player"`
	From   Position `json:"from" bson:"from"`
	To     Position `json:"to" bson:"to"`
}

type LegalMove struct {
	Piece Piece    `json:"piece" bson:"piece"`
	From  Position `json:"from" bson:"from"`
	To    Position `json:"to" bson:"to"`
}

// RecommendedMove is what the oracle suggests. It carries coordinates only.
type RecommendedMove struct {
	From Position `json:"from" bson:"from"`
	To   Position `json:"to" bson:"to"`
}
