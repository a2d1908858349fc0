package datastream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer emits protocol records to an underlying stream, flushing after
// each record when the destination supports it so deltas reach the client
// as they are produced.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Text writes a tag-0 delta record.
func (w *Writer) Text(delta string) error {
	payload, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("datastream: encode delta: %w", err)
	}
	return w.record(TagText, payload)
}

// Data writes a tag-2 metadata record with v encoded as JSON.
func (w *Writer) Data(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("datastream: encode data: %w", err)
	}
	return w.record(TagData, payload)
}

func (w *Writer) record(tag string, payload []byte) error {
	if _, err := fmt.Fprintf(w.w, "%s:%s\n", tag, payload); err != nil {
		return fmt.Errorf("datastream: write record: %w", err)
	}
	if f, ok := w.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
