package btree

import (
	"fmt"

	"github.com/h5coro/h5coro/internal/binary"
)

// B-tree v2 types for dense group/attribute indexes.
const (
	// BTreeV2TypeLinkName is type 5: links indexed by name hash.
	BTreeV2TypeLinkName uint8 = 5
	// BTreeV2TypeAttrName is type 8: attributes indexed by name hash.
	BTreeV2TypeAttrName uint8 = 8
)

// NameRecord is one entry of a name-indexed v2 B-tree (type 5 or 8): a hash
// of the member's name plus the heap ID needed to fetch its full record
// from the paired fractal heap.
type NameRecord struct {
	NameHash uint32
	HeapID   []byte
}

// ReadNameIndex reads every record of a type 5 or type 8 v2 B-tree. Dense
// link/attribute counts are small enough in practice that a full scan
// followed by an exact name-hash match is simpler, and no slower in
// practice, than descending the tree by comparing keys at each internal
// node.
func ReadNameIndex(r *binary.Reader, btreeAddr uint64, wantType uint8) ([]NameRecord, error) {
	header, err := readBTreeV2Header(r, btreeAddr)
	if err != nil {
		return nil, fmt.Errorf("reading B-tree v2 header: %w", err)
	}
	if header.Type != wantType {
		return nil, fmt.Errorf("unexpected B-tree v2 type: %d (expected %d)", header.Type, wantType)
	}
	if header.TotalRecords == 0 {
		return nil, nil
	}

	if header.Depth == 0 {
		return readNameLeafRecords(r, header.RootAddr, int(header.NumRootRecords), header.RecordSize, wantType)
	}
	return readNameInternalNode(r, header.RootAddr, int(header.NumRootRecords), header, int(header.Depth), wantType)
}

func readNameLeafRecords(r *binary.Reader, address uint64, numRecords int, recordSize uint16, wantType uint8) ([]NameRecord, error) {
	nr := r.At(int64(address))

	sig, err := nr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading leaf signature: %w", err)
	}
	if string(sig) != "BTLF" {
		return nil, fmt.Errorf("invalid B-tree v2 leaf signature: %q", string(sig))
	}
	if _, err := nr.ReadUint8(); err != nil { // version
		return nil, err
	}
	if _, err := nr.ReadUint8(); err != nil { // type
		return nil, err
	}

	records := make([]NameRecord, 0, numRecords)
	for i := 0; i < numRecords; i++ {
		rec, err := readNameRecord(nr, int(recordSize), wantType)
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readNameInternalNode(r *binary.Reader, address uint64, numRecords int, header *btreeV2Header, depth int, wantType uint8) ([]NameRecord, error) {
	nr := r.At(int64(address))

	sig, err := nr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading internal node signature: %w", err)
	}
	if string(sig) != "BTIN" {
		return nil, fmt.Errorf("invalid B-tree v2 internal node signature: %q", string(sig))
	}
	if _, err := nr.ReadUint8(); err != nil { // version
		return nil, err
	}
	if _, err := nr.ReadUint8(); err != nil { // type
		return nil, err
	}

	var records []NameRecord
	for i := 0; i <= numRecords; i++ {
		if i < numRecords {
			nr.Skip(int64(header.RecordSize))
		}
		childAddr, err := nr.ReadOffset()
		if err != nil {
			return nil, fmt.Errorf("reading child pointer %d: %w", i, err)
		}
		childNumRecords, err := nr.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("reading child record count %d: %w", i, err)
		}

		var childRecords []NameRecord
		if depth == 1 {
			childRecords, err = readNameLeafRecords(r, childAddr, int(childNumRecords), header.RecordSize, wantType)
		} else {
			childRecords, err = readNameInternalNode(r, childAddr, int(childNumRecords), header, depth-1, wantType)
		}
		if err != nil {
			return nil, fmt.Errorf("reading child node %d: %w", i, err)
		}
		records = append(records, childRecords...)
	}
	return records, nil
}

// readNameRecord parses one fixed-size record of the given type.
//
// Type 5 (link name):   name hash (4) + heap ID (recordSize-4)
// Type 8 (attr name):    heap ID (recordSize-9) + flags (1) + creation order (4) + name hash (4)
func readNameRecord(nr *binary.Reader, recordSize int, wantType uint8) (NameRecord, error) {
	data, err := nr.ReadBytes(recordSize)
	if err != nil {
		return NameRecord{}, err
	}

	switch wantType {
	case BTreeV2TypeLinkName:
		if len(data) < 4 {
			return NameRecord{}, fmt.Errorf("link name record too short")
		}
		hash := nr.ByteOrder().Uint32(data[0:4])
		return NameRecord{NameHash: hash, HeapID: append([]byte(nil), data[4:]...)}, nil

	case BTreeV2TypeAttrName:
		if len(data) < 9 {
			return NameRecord{}, fmt.Errorf("attribute name record too short")
		}
		heapIDLen := len(data) - 9
		hash := nr.ByteOrder().Uint32(data[heapIDLen+5 : heapIDLen+9])
		return NameRecord{NameHash: hash, HeapID: append([]byte(nil), data[:heapIDLen]...)}, nil

	default:
		return NameRecord{}, fmt.Errorf("unsupported name record type %d", wantType)
	}
}

// NameHash computes the Jenkins lookup3 hash HDF5 uses to index dense link
// and attribute names, matching the reference implementation's checksum
// used for type 5/8 B-tree keys.
func NameHash(name string) uint32 {
	return binary.Lookup3Checksum([]byte(name))
}
