package tracing

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ahblite/ahb"
)

// CSVRecorder writes one line per transaction with a header line first.
type CSVRecorder struct {
	w         *bufio.Writer
	closer    io.Closer
	header    bool
	rows      []row
	batchSize int
}

// NewCSVRecorder creates a recorder writing to w.
func NewCSVRecorder(w io.Writer) *CSVRecorder {
	return &CSVRecorder{
		w:         bufio.NewWriter(w),
		batchSize: 1000,
	}
}

// CreateCSVRecorder creates path and a recorder writing to it. It fails if the
// file already exists. The recorder is flushed and closed when the program
// exits through atexit.
func CreateCSVRecorder(path string) (*CSVRecorder, error) {
	file, err := createNew(path)
	if err != nil {
		return nil, err
	}

	r := NewCSVRecorder(file)
	r.closer = file

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing %s: %v\n", path, err)
		}
	})

	return r, nil
}

// Record buffers one transaction.
func (r *CSVRecorder) Record(unit string, beat int, t ahb.Transaction) {
	r.rows = append(r.rows, row{unit: unit, beat: beat, t: t})
	if len(r.rows) >= r.batchSize {
		if err := r.Flush(); err != nil {
			panic(err)
		}
	}
}

// Flush writes the buffered transactions.
func (r *CSVRecorder) Flush() error {
	if !r.header {
		fmt.Fprintf(r.w,
			"Unit, Beat, HTRANS, HWRITE, HADDR, Bytes, HBURST, HPROT, HWDATA\n")
		r.header = true
	}

	for _, p := range r.rows {
		fmt.Fprintf(r.w, "%s, %d, %s, %t, 0x%x, %d, %s, %d, %s\n",
			p.unit,
			p.beat,
			p.t.TransferType,
			p.t.Write,
			p.t.Address,
			p.t.Bytes(),
			ahb.DecodeBurst(p.t.BurstCode),
			p.t.Protection,
			hex.EncodeToString(p.t.WriteData),
		)
	}

	r.rows = nil

	return errors.Wrap(r.w.Flush(), "writing CSV")
}

// Close flushes and closes the underlying writer if it can be closed.
func (r *CSVRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	if r.closer == nil {
		return nil
	}

	c := r.closer
	r.closer = nil

	return c.Close()
}

// TextRecorder prints transactions as they are recorded, one per line.
type TextRecorder struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewTextRecorder creates a recorder printing to w.
func NewTextRecorder(w io.Writer) *TextRecorder {
	return &TextRecorder{w: bufio.NewWriter(w)}
}

// CreateTextRecorder creates path and a recorder printing to it. It fails if
// the file already exists.
func CreateTextRecorder(path string) (*TextRecorder, error) {
	file, err := createNew(path)
	if err != nil {
		return nil, err
	}

	r := NewTextRecorder(file)
	r.closer = file

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing %s: %v\n", path, err)
		}
	})

	return r, nil
}

// Record prints one transaction.
func (r *TextRecorder) Record(unit string, beat int, t ahb.Transaction) {
	fmt.Fprintf(r.w, "%s[%d] %s\n", unit, beat, t)
}

// Flush flushes the output.
func (r *TextRecorder) Flush() error {
	return errors.Wrap(r.w.Flush(), "writing text")
}

// Close flushes the output and closes the underlying writer if it can be
// closed.
func (r *TextRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	if r.closer == nil {
		return nil
	}

	c := r.closer
	r.closer = nil

	return c.Close()
}

func createNew(path string) (*os.File, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Errorf("file %s already exists", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}

	return file, nil
}
