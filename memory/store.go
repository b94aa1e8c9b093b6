package memory

// A Store is the byte-addressed backing of a memory model. The bus functional
// models only see this interface, so tests can substitute their own store.
type Store interface {
	// CanAccess tells if [address, address+length) lies inside the store.
	CanAccess(address uint64, length uint64) bool
	Read(address uint64, length uint64) ([]byte, error)
	Write(address uint64, data []byte) error
}
