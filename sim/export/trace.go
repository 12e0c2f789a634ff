package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// TraceWriter records one JSON line per tick into a zstd-compressed file.
// It implements sim.TickObserver.
type TraceWriter struct {
	mu   sync.Mutex
	path string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
	n    int
}

var _ sim.TickObserver = (*TraceWriter)(nil)

// NewTraceWriter creates (or truncates) the trace file at path.
func NewTraceWriter(path string) (*TraceWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &TraceWriter{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Path returns the trace file location.
func (t *TraceWriter) Path() string { return t.path }

// Records returns how many tick records have been written.
func (t *TraceWriter) Records() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// OnTick appends rec as one JSON line.
func (t *TraceWriter) OnTick(rec sim.TickRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return fmt.Errorf("trace %s: write after close", t.path)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return err
	}
	t.n++
	return nil
}

// Close flushes buffered records and finalizes the zstd frame. Closing twice is a no-op.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return nil
	}
	var firstErr error
	if err := t.w.Flush(); err != nil {
		firstErr = err
	}
	if err := t.enc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := t.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	t.w, t.enc, t.f = nil, nil, nil
	return firstErr
}

// ReadTrace decodes every tick record in a trace file.
func ReadTrace(path string) ([]sim.TickRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTrace(f)
}

// DecodeTrace decodes a zstd-compressed JSONL tick stream.
func DecodeTrace(r io.Reader) ([]sim.TickRecord, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []sim.TickRecord
	jd := json.NewDecoder(dec)
	for {
		var rec sim.TickRecord
		if err := jd.Decode(&rec); err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, fmt.Errorf("decode trace record %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
}
