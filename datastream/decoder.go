package datastream

import (
	"encoding/json"
	"strings"
)

// Decoder reassembles protocol records from raw body chunks. Chunk
// boundaries carry no meaning: a record split across chunks is buffered
// until its terminating newline arrives, and the same ordered chunks always
// yield the same ordered deltas no matter how the input is split.
//
// The zero value is ready to use. A Decoder never fails: malformed records
// are skipped and decoding continues.
type Decoder struct {
	rem string // partial trailing record from the previous chunk
}

// Feed consumes one chunk and returns the text deltas completed by it, in
// arrival order. A partial record at the end of the chunk is held back
// until a later chunk terminates it; if the stream ends first, the partial
// record is simply discarded.
func (d *Decoder) Feed(chunk string) []string {
	data := d.rem + chunk
	var deltas []string
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := data[:i]
		data = data[i+1:]
		if delta, ok := decodeRecord(line); ok {
			deltas = append(deltas, delta)
		}
	}
	d.rem = data
	return deltas
}

// decodeRecord parses one complete record. ok is false for records that
// carry no text delta: unknown tags, missing separators, and payloads that
// are not well-formed quoted string literals.
func decodeRecord(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	tag, payload, found := strings.Cut(line, ":")
	if !found || tag != TagText {
		return "", false
	}
	var delta string
	if err := json.Unmarshal([]byte(payload), &delta); err != nil {
		return "", false
	}
	return delta, true
}
