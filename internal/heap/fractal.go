package heap

import (
	"fmt"

	"github.com/h5coro/h5coro/internal/binary"
)

// FractalHeap represents an HDF5 fractal heap (signature "FRHP"), the
// storage backing dense group links and dense attributes.
// Only managed objects are supported: huge and tiny heap IDs, used for
// objects far outside the typical link/attribute size range, are rejected.
type FractalHeap struct {
	HeapIDLength         uint16
	MaxManagedObjectSize uint32
	TableWidth           uint16
	StartingBlockSize    uint64
	MaxDirectBlockSize   uint64
	MaxHeapSizeBits      uint16
	RootBlockAddress     uint64
	CurrentRowsRoot      uint16

	offsetFieldSize int // bytes used to encode a managed heap ID's offset
	lengthFieldSize int // bytes used to encode a managed heap ID's length

	blocks []directBlockSpan // flattened, offset-sorted list of direct blocks
}

type directBlockSpan struct {
	startOffset uint64
	size        uint64
	address     uint64
}

// ReadFractalHeap reads a fractal heap header at address, plus its direct
// block tree (§H5Dense: doubling table of direct/indirect blocks).
func ReadFractalHeap(r *binary.Reader, address uint64) (*FractalHeap, error) {
	hr := r.At(int64(address))

	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading fractal heap signature: %w", err)
	}
	if string(sig) != "FRHP" {
		return nil, fmt.Errorf("invalid fractal heap signature: %q", string(sig))
	}

	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported fractal heap version: %d", version)
	}

	h := &FractalHeap{}

	if h.HeapIDLength, err = hr.ReadUint16(); err != nil {
		return nil, err
	}
	ioFilterLen, err := hr.ReadUint16()
	if err != nil {
		return nil, err
	}
	if _, err = hr.ReadUint8(); err != nil { // flags
		return nil, err
	}
	if h.MaxManagedObjectSize, err = hr.ReadUint32(); err != nil {
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // next huge object ID
		return nil, err
	}
	if _, err = hr.ReadOffset(); err != nil { // huge objects v2 B-tree address
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // free space in managed blocks
		return nil, err
	}
	if _, err = hr.ReadOffset(); err != nil { // managed block free space manager
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // managed space in heap
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // allocated space in heap
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // direct block allocation iterator offset
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // number of managed objects
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // size of huge objects
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // number of huge objects
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // size of tiny objects
		return nil, err
	}
	if _, err = hr.ReadLength(); err != nil { // number of tiny objects
		return nil, err
	}
	if h.TableWidth, err = hr.ReadUint16(); err != nil {
		return nil, err
	}
	if h.StartingBlockSize, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if h.MaxDirectBlockSize, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if h.MaxHeapSizeBits, err = hr.ReadUint16(); err != nil {
		return nil, err
	}
	if _, err = hr.ReadUint16(); err != nil { // starting # of rows in root indirect block
		return nil, err
	}
	if h.RootBlockAddress, err = hr.ReadOffset(); err != nil {
		return nil, err
	}
	if h.CurrentRowsRoot, err = hr.ReadUint16(); err != nil {
		return nil, err
	}
	if ioFilterLen > 0 {
		hr.Skip(int64(ioFilterLen))
	}
	hr.Skip(4) // checksum

	h.offsetFieldSize = bytesForBits(int(h.MaxHeapSizeBits))
	h.lengthFieldSize = bytesForValue(uint64(h.MaxManagedObjectSize))

	if h.RootBlockAddress == 0 || r.IsUndefinedOffset(h.RootBlockAddress) {
		return h, nil // empty heap
	}

	if h.CurrentRowsRoot == 0 {
		size := h.StartingBlockSize
		if err := h.collectDirectBlock(r, h.RootBlockAddress, 0, size); err != nil {
			return nil, err
		}
	} else {
		if err := h.collectIndirectBlock(r, h.RootBlockAddress, int(h.CurrentRowsRoot), 0); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func bytesForBits(bits int) int {
	return (bits + 7) / 8
}

func bytesForValue(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 8
	}
	if n == 0 {
		n = 1
	}
	return n
}

// maxDirectRows is the number of doubling-table rows whose blocks are
// direct blocks; rows beyond this contain indirect block pointers.
func (h *FractalHeap) maxDirectRows() int {
	rows := 2
	size := h.StartingBlockSize
	for size < h.MaxDirectBlockSize {
		size <<= 1
		rows++
	}
	return rows
}

// rowSize returns the block size of row (0-indexed) in the doubling table.
func (h *FractalHeap) rowSize(row int) uint64 {
	if row < 2 {
		return h.StartingBlockSize
	}
	return h.StartingBlockSize << uint(row-1)
}

func (h *FractalHeap) collectDirectBlock(r *binary.Reader, address, startOffset, size uint64) error {
	h.blocks = append(h.blocks, directBlockSpan{startOffset: startOffset, size: size, address: address})
	return nil
}

// collectIndirectBlock reads an indirect block ("FHIB") and recurses into
// its direct and indirect children, accumulating direct block spans.
func (h *FractalHeap) collectIndirectBlock(r *binary.Reader, address uint64, numRows int, baseOffset uint64) error {
	nr := r.At(int64(address))

	sig, err := nr.ReadBytes(4)
	if err != nil {
		return fmt.Errorf("reading indirect block signature: %w", err)
	}
	if string(sig) != "FHIB" {
		return fmt.Errorf("invalid indirect block signature: %q", string(sig))
	}
	if _, err := nr.ReadUint8(); err != nil { // version
		return err
	}
	if _, err := nr.ReadOffset(); err != nil { // heap header address
		return err
	}
	nr.Skip(int64(h.offsetFieldSize)) // block offset

	maxDirectRows := h.maxDirectRows()
	offset := baseOffset

	for row := 0; row < numRows; row++ {
		rowSize := h.rowSize(row)
		for col := 0; col < int(h.TableWidth); col++ {
			addr, err := nr.ReadOffset()
			if err != nil {
				return fmt.Errorf("reading block entry (row %d col %d): %w", row, col, err)
			}
			if row < maxDirectRows {
				if !r.IsUndefinedOffset(addr) && addr != 0 {
					if err := h.collectDirectBlock(r, addr, offset, rowSize); err != nil {
						return err
					}
				}
			} else {
				if !r.IsUndefinedOffset(addr) && addr != 0 {
					if err := h.collectIndirectBlock(r, addr, h.maxDirectRows(), offset); err != nil {
						return err
					}
				}
			}
			offset += rowSize
		}
	}

	return nil
}

func (h *FractalHeap) directBlockHeaderSize(r *binary.Reader) int {
	return 4 + 1 + r.OffsetSize() + h.offsetFieldSize
}

// GetObject dereferences a managed-object heap ID, returning the raw bytes
// stored at it. Tiny and huge heap IDs (type bits 1 and 2) are not
// supported: dense link/attribute storage for the datasets this engine
// targets stays within the managed range.
func (h *FractalHeap) GetObject(r *binary.Reader, heapID []byte) ([]byte, error) {
	if len(heapID) < 1+h.offsetFieldSize+h.lengthFieldSize {
		return nil, fmt.Errorf("fractal heap: heap ID too short")
	}
	idType := heapID[0] & 0x03
	if idType != 0 {
		return nil, fmt.Errorf("fractal heap: unsupported heap ID type %d (only managed objects are supported)", idType)
	}

	offset := decodeLE(heapID[1 : 1+h.offsetFieldSize])
	length := decodeLE(heapID[1+h.offsetFieldSize : 1+h.offsetFieldSize+h.lengthFieldSize])

	for _, b := range h.blocks {
		if offset >= b.startOffset && offset < b.startOffset+b.size {
			localOffset := offset - b.startOffset
			headerSize := uint64(h.directBlockHeaderSize(r))
			dr := r.At(int64(b.address) + int64(headerSize) + int64(localOffset))
			return dr.ReadBytes(int(length))
		}
	}
	return nil, fmt.Errorf("fractal heap: no direct block covers offset %d", offset)
}

func decodeLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
