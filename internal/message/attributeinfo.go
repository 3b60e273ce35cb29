package message

import (
	"fmt"

	binpkg "github.com/h5coro/h5coro/internal/binary"
)

// AttributeInfo represents an attribute info message (type 0x0015). Its
// presence means the object's attributes exceed the inline threshold and
// live in dense (fractal heap + v2 B-tree type 8) storage instead of as
// Attribute messages directly on the object header.
type AttributeInfo struct {
	Version                   uint8
	Flags                     uint8
	MaxCreationIndex          uint16 // valid only if Flags&0x01 != 0
	FractalHeapAddress        uint64 // undefined (all 0xFF) if no dense storage
	NameBTreeAddress          uint64 // v2 B-tree type 8, indexes attributes by name hash
	CreationOrderBTreeAddress uint64 // valid only if Flags&0x02 != 0
}

func (m *AttributeInfo) Type() Type { return TypeAttributeInfo }

// HasDenseStorage reports whether attribute metadata is stored in the
// fractal heap this message points to.
func (m *AttributeInfo) HasDenseStorage(r *binpkg.Reader) bool {
	return !r.IsUndefinedOffset(m.FractalHeapAddress)
}

func parseAttributeInfo(data []byte, r *binpkg.Reader) (*AttributeInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("attribute info message too short")
	}

	info := &AttributeInfo{
		Version: data[0],
		Flags:   data[1],
	}
	offset := 2
	offsetSize := r.OffsetSize()

	if info.Flags&0x01 != 0 {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("attribute info max creation index truncated")
		}
		info.MaxCreationIndex = uint16(decodeUint(data[offset:offset+2], 2, r.ByteOrder()))
		offset += 2
	}

	if offset+offsetSize > len(data) {
		return nil, fmt.Errorf("attribute info fractal heap address truncated")
	}
	info.FractalHeapAddress = decodeUint(data[offset:offset+offsetSize], offsetSize, r.ByteOrder())
	offset += offsetSize

	if offset+offsetSize > len(data) {
		return nil, fmt.Errorf("attribute info name b-tree address truncated")
	}
	info.NameBTreeAddress = decodeUint(data[offset:offset+offsetSize], offsetSize, r.ByteOrder())
	offset += offsetSize

	if info.Flags&0x02 != 0 {
		if offset+offsetSize > len(data) {
			return nil, fmt.Errorf("attribute info creation order b-tree address truncated")
		}
		info.CreationOrderBTreeAddress = decodeUint(data[offset:offset+offsetSize], offsetSize, r.ByteOrder())
		offset += offsetSize
	}

	return info, nil
}
