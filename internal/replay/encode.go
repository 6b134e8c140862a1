package replay

import (
	"encoding/json"
	"io"
)

type encodedRecord struct {
	MapWidth   int           `json:"mapWidth"`
	MapHeight  int           `json:"mapHeight"`
	Cities     []int         `json:"cities"`
	CityArmies []int         `json:"cityArmies,omitempty"`
	Generals   []int         `json:"generals"`
	Usernames  []string      `json:"usernames"`
	Moves      []encodedMove `json:"moves"`
}

type encodedMove struct {
	Index int  `json:"index"`
	Start int  `json:"start"`
	End   int  `json:"end"`
	Is50  bool `json:"is50"`
	Turn  int  `json:"turn,omitempty"`
}

// Encode writes rec in the replay JSON layout that Decode reads
func Encode(w io.Writer, rec *Record) error {
	out := encodedRecord{
		MapWidth:   rec.MapWidth,
		MapHeight:  rec.MapHeight,
		Cities:     nonNilInts(rec.Cities),
		CityArmies: rec.CityArmies,
		Generals:   nonNilInts(rec.Generals),
		Usernames:  rec.Usernames,
		Moves:      make([]encodedMove, len(rec.Moves)),
	}
	if out.Usernames == nil {
		out.Usernames = []string{}
	}
	for i, m := range rec.Moves {
		out.Moves[i] = encodedMove(m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
