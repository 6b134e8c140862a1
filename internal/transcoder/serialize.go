package transcoder

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/core"
)

// Serialize writes the grid followed by one section per player with at least
// one entry:
//
//	<grid>
//	|<username>:
//	<entry>
//	...
//
// Line endings are always "\n".
func (t *Transcoder) Serialize(w io.Writer, grid *core.Grid, grouped map[int][]string, usernames []string) error {
	var sb strings.Builder

	gridText, err := t.encodeGrid(grid)
	if err != nil {
		return err
	}
	sb.WriteString(gridText)
	sb.WriteString("\n")

	for i, name := range usernames {
		entries := grouped[i]
		if len(entries) == 0 {
			continue
		}
		sb.WriteString("|")
		sb.WriteString(name)
		sb.WriteString(":\n")
		sb.WriteString(strings.Join(entries, "\n"))
		sb.WriteString("\n")
	}

	_, err = io.WriteString(w, sb.String())
	return err
}

func (t *Transcoder) encodeGrid(grid *core.Grid) (string, error) {
	if t.opts.GridFormat == GridBracketed {
		return t.bracketedGrid(grid), nil
	}

	var (
		data []byte
		err  error
	)
	if t.opts.CellEncoding == CellTriple {
		data, err = json.Marshal(grid.Triples())
	} else {
		data, err = json.Marshal(grid.Codes())
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// bracketedGrid renders one row per line:
//
//	[
//	  [2,2],
//	  [0,3]
//	]
func (t *Transcoder) bracketedGrid(grid *core.Grid) string {
	var sb strings.Builder
	sb.Grow(grid.W*grid.H*2 + grid.H*5 + 4)

	sb.WriteString("[\n")
	rows := grid.Rows()
	for y, row := range rows {
		sb.WriteString("  [")
		for x, c := range row {
			if x > 0 {
				sb.WriteByte(',')
			}
			t.writeCell(&sb, c)
		}
		sb.WriteString("]")
		if y != len(rows)-1 {
			sb.WriteByte(',')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("]")
	return sb.String()
}

func (t *Transcoder) writeCell(sb *strings.Builder, c core.Cell) {
	if t.opts.CellEncoding != CellTriple {
		sb.WriteString(strconv.Itoa(c.Type))
		return
	}
	sb.WriteByte('[')
	for i, v := range c.Triple() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte(']')
}
