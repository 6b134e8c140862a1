package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// rawRecord mirrors the replay JSON. Pointers tell a missing key apart from a
// zero value.
type rawRecord struct {
	MapWidth   *int       `json:"mapWidth"`
	MapHeight  *int       `json:"mapHeight"`
	Cities     *[]int     `json:"cities"`
	CityArmies []int      `json:"cityArmies"`
	Generals   *[]int     `json:"generals"`
	Usernames  *[]string  `json:"usernames"`
	Moves      *[]rawMove `json:"moves"`
}

type rawMove struct {
	Index *int  `json:"index"`
	Start *int  `json:"start"`
	End   *int  `json:"end"`
	Is50  *Flag `json:"is50"`
	Turn  *int  `json:"turn"`
}

// LoadFile reads and validates the replay at path
func LoadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()

	rec, err := Decode(f)
	if err != nil {
		var formatErr *InputFormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
		}
		return nil, err
	}
	return rec, nil
}

// Decode reads one replay from r, transparently unwrapping gzip, zstd or
// framed snappy compression, and validates it.
func Decode(r io.Reader) (*Record, error) {
	src, closeFn, err := decompress(r)
	if err != nil {
		return nil, &InputFormatError{Err: err}
	}
	defer closeFn()

	dec := json.NewDecoder(src)
	var raw rawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, &InputFormatError{Err: err}
	}
	// the replay must be the only value in the input
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after replay object")
		}
		return nil, &InputFormatError{Err: fmt.Errorf("trailing data: %w", err)}
	}

	rec, err := raw.record()
	if err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (raw *rawRecord) record() (*Record, error) {
	switch {
	case raw.MapWidth == nil:
		return nil, missingKey("mapWidth")
	case raw.MapHeight == nil:
		return nil, missingKey("mapHeight")
	case raw.Cities == nil:
		return nil, missingKey("cities")
	case raw.Generals == nil:
		return nil, missingKey("generals")
	case raw.Usernames == nil:
		return nil, missingKey("usernames")
	case raw.Moves == nil:
		return nil, missingKey("moves")
	}

	rec := &Record{
		MapWidth:   *raw.MapWidth,
		MapHeight:  *raw.MapHeight,
		Cities:     *raw.Cities,
		CityArmies: raw.CityArmies,
		Generals:   *raw.Generals,
		Usernames:  *raw.Usernames,
		Moves:      make([]Move, 0, len(*raw.Moves)),
	}

	for i, m := range *raw.Moves {
		key := func(name string) string { return fmt.Sprintf("moves[%d].%s", i, name) }
		switch {
		case m.Index == nil:
			return nil, missingKey(key("index"))
		case m.Start == nil:
			return nil, missingKey(key("start"))
		case m.End == nil:
			return nil, missingKey(key("end"))
		case m.Is50 == nil:
			return nil, missingKey(key("is50"))
		}

		move := Move{
			Index: *m.Index,
			Start: *m.Start,
			End:   *m.End,
			Is50:  bool(*m.Is50),
		}
		if m.Turn != nil {
			if *m.Turn < 1 {
				return nil, &InputFormatError{Key: key("turn"), Err: fmt.Errorf("must be at least 1, got %d", *m.Turn)}
			}
			move.Turn = *m.Turn
		}
		rec.Moves = append(rec.Moves, move)
	}
	return rec, nil
}

// decompress sniffs the first bytes of r and wraps it in the matching reader
func decompress(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(snappyMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	case bytes.HasPrefix(head, snappyMagic):
		return snappy.NewReader(br), func() {}, nil
	default:
		return br, func() {}, nil
	}
}
