package memory

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadIHex reports a malformed Intel HEX record.
var ErrBadIHex = errors.New("malformed Intel HEX record")

// Intel HEX record types.
const (
	ihexData           = 0x00
	ihexEndOfFile      = 0x01
	ihexSegmentAddress = 0x02
	ihexStartSegment   = 0x03
	ihexLinearAddress  = 0x04
	ihexStartLinear    = 0x05
)

// LoadIHex writes the data records of an Intel HEX stream into store. Blank
// lines are skipped and reading stops at the end-of-file record. Start
// address records are ignored.
func LoadIHex(r io.Reader, store Store) error {
	scanner := bufio.NewScanner(r)
	base := uint64(0)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := parseIHexRecord(line)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNumber)
		}

		switch rec.kind {
		case ihexData:
			err = store.Write(base+uint64(rec.offset), rec.data)
			if err != nil {
				return errors.Wrapf(err, "line %d", lineNumber)
			}
		case ihexEndOfFile:
			return nil
		case ihexSegmentAddress:
			base = uint64(rec.word()) << 4
		case ihexLinearAddress:
			base = uint64(rec.word()) << 16
		case ihexStartSegment, ihexStartLinear:
		default:
			return errors.Wrapf(ErrBadIHex,
				"line %d: record type %02x", lineNumber, rec.kind)
		}
	}

	return errors.Wrap(scanner.Err(), "reading Intel HEX")
}

// LoadIHexFile loads the Intel HEX file at path into store.
func LoadIHexFile(path string, store Store) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	return errors.Wrapf(LoadIHex(f, store), "loading %s", path)
}

type ihexRecord struct {
	kind   byte
	offset uint16
	data   []byte
}

func (r ihexRecord) word() uint16 {
	if len(r.data) < 2 {
		return 0
	}

	return uint16(r.data[0])<<8 | uint16(r.data[1])
}

func parseIHexRecord(line string) (ihexRecord, error) {
	if line[0] != ':' {
		return ihexRecord{}, errors.Wrap(ErrBadIHex, "missing start code")
	}

	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return ihexRecord{}, errors.Wrap(ErrBadIHex, err.Error())
	}

	if len(raw) < 5 || len(raw) != int(raw[0])+5 {
		return ihexRecord{}, errors.Wrapf(ErrBadIHex,
			"length %d does not match the byte count", len(raw))
	}

	sum := byte(0)
	for _, b := range raw {
		sum += b
	}

	if sum != 0 {
		return ihexRecord{}, errors.Wrap(ErrBadIHex, "bad checksum")
	}

	return ihexRecord{
		kind:   raw[3],
		offset: uint16(raw[1])<<8 | uint16(raw[2]),
		data:   raw[4 : len(raw)-1],
	}, nil
}
