// Package memory provides the sparse byte storage behind the memory models.
package memory

import (
	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when an access leaves the storage capacity.
var ErrOutOfRange = errors.New("access beyond the storage capacity")

// DefaultUnitSize is the size of the pages a Storage allocates on demand.
const DefaultUnitSize = 4096

// A Storage keeps the content of a simulated memory.
//
// The storage manages its bytes in units, similar to pages. Units that are
// never touched by Read or Write are never allocated and read back as zero.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: DefaultUnitSize,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of addressable bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// CanAccess tells if [address, address+length) lies inside the storage.
func (s *Storage) CanAccess(address uint64, length uint64) bool {
	if length > s.capacity {
		return false
	}

	return address <= s.capacity-length
}

func (s *Storage) unit(address uint64, create bool) []byte {
	baseAddr, _ := s.parseAddress(address)

	unit, ok := s.data[baseAddr]
	if !ok && create {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	if !s.CanAccess(address, length) {
		return nil, errors.Wrapf(ErrOutOfRange,
			"read 0x%x+%d, capacity %d", address, length, s.capacity)
	}

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		unit := s.unit(currAddr, false)
		if unit != nil {
			copy(res[dataOffset:dataOffset+lenToRead],
				unit[inUnitAddr:inUnitAddr+lenToRead])
		}

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if !s.CanAccess(address, length) {
		return errors.Wrapf(ErrOutOfRange,
			"write 0x%x+%d, capacity %d", address, length, s.capacity)
	}

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToWrite := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		unit := s.unit(currAddr, true)
		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

var _ Store = (*Storage)(nil)
