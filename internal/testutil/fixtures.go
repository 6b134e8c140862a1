package testutil

import (
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
)

// ExampleReplayJSON is the smallest complete replay: a 2x2 map, one city,
// two generals and a single move by player A.
const ExampleReplayJSON = `{"mapWidth":2,"mapHeight":2,"cities":[3],"generals":[0,1],"usernames":["A","B"],"moves":[{"index":0,"start":0,"end":1,"is50":0,"turn":1}]}`

// ExampleRecord is the decoded form of ExampleReplayJSON
func ExampleRecord() *replay.Record {
	return &replay.Record{
		MapWidth:  2,
		MapHeight: 2,
		Cities:    []int{3},
		Generals:  []int{0, 1},
		Usernames: []string{"A", "B"},
		Moves: []replay.Move{
			{Index: 0, Start: 0, End: 1, Is50: false, Turn: 1},
		},
	}
}

// CreateTestRecord creates a record with generals on the first row and no
// cities or moves
func CreateTestRecord(width, height int, usernames ...string) *replay.Record {
	generals := make([]int, len(usernames))
	for i := range usernames {
		generals[i] = i % (width * height)
	}
	return &replay.Record{
		MapWidth:  width,
		MapHeight: height,
		Cities:    []int{},
		Generals:  generals,
		Usernames: usernames,
		Moves:     []replay.Move{},
	}
}
