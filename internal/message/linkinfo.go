package message

import (
	"fmt"

	binpkg "github.com/h5coro/h5coro/internal/binary"
)

// LinkInfo represents a link info message (type 0x0002). Its presence on a
// group's object header means the group's membership lives in a fractal
// heap plus v2 B-tree (dense storage) rather than inline Link messages or a
// v1 symbol table.
type LinkInfo struct {
	Version               uint8
	Flags                 uint8
	MaxCreationIndex      uint64 // valid only if Flags&0x01 != 0
	FractalHeapAddress    uint64 // undefined (all 0xFF) if no dense storage
	NameBTreeAddress      uint64 // v2 B-tree indexing links by name
	CreationOrderBTreeAddress uint64 // valid only if Flags&0x02 != 0
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// HasDenseStorage reports whether link metadata is stored in the fractal
// heap this message points to.
func (m *LinkInfo) HasDenseStorage(r *binpkg.Reader) bool {
	return !r.IsUndefinedOffset(m.FractalHeapAddress)
}

func parseLinkInfo(data []byte, r *binpkg.Reader) (*LinkInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("link info message too short")
	}

	info := &LinkInfo{
		Version: data[0],
		Flags:   data[1],
	}
	offset := 2
	offsetSize := r.OffsetSize()

	if info.Flags&0x01 != 0 {
		if offset+8 > len(data) {
			return nil, fmt.Errorf("link info max creation index truncated")
		}
		info.MaxCreationIndex = decodeUint(data[offset:offset+8], 8, r.ByteOrder())
		offset += 8
	}

	if offset+offsetSize > len(data) {
		return nil, fmt.Errorf("link info fractal heap address truncated")
	}
	info.FractalHeapAddress = decodeUint(data[offset:offset+offsetSize], offsetSize, r.ByteOrder())
	offset += offsetSize

	if offset+offsetSize > len(data) {
		return nil, fmt.Errorf("link info name b-tree address truncated")
	}
	info.NameBTreeAddress = decodeUint(data[offset:offset+offsetSize], offsetSize, r.ByteOrder())
	offset += offsetSize

	if info.Flags&0x02 != 0 {
		if offset+offsetSize > len(data) {
			return nil, fmt.Errorf("link info creation order b-tree address truncated")
		}
		info.CreationOrderBTreeAddress = decodeUint(data[offset:offset+offsetSize], offsetSize, r.ByteOrder())
		offset += offsetSize
	}

	return info, nil
}
