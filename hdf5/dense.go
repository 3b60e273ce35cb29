package hdf5

import (
	"fmt"

	"github.com/h5coro/h5coro/internal/binary"
	"github.com/h5coro/h5coro/internal/btree"
	"github.com/h5coro/h5coro/internal/heap"
	"github.com/h5coro/h5coro/internal/message"
	"github.com/h5coro/h5coro/internal/object"
)

// Dense link and attribute storage: once an object accumulates
// enough links or attributes, HDF5 moves them out of the object header's
// inline messages into a fractal heap indexed by a v2 B-tree keyed on a
// Jenkins hash of the member's name. A LinkInfo or AttributeInfo message on
// the header points at the two structures.

// denseFindLink looks up name among a group's densely stored links. It
// returns (nil, false, nil) if the group has no dense link storage, or if
// dense storage exists but does not contain name.
func denseFindLink(r *binary.Reader, header *object.Header, name string) (*message.Link, bool, error) {
	info := header.LinkInfo()
	if info == nil || !info.HasDenseStorage(r) {
		return nil, false, nil
	}

	fh, err := heap.ReadFractalHeap(r, info.FractalHeapAddress)
	if err != nil {
		return nil, false, fmt.Errorf("reading link fractal heap: %w", err)
	}
	records, err := btree.ReadNameIndex(r, info.NameBTreeAddress, btree.BTreeV2TypeLinkName)
	if err != nil {
		return nil, false, fmt.Errorf("reading dense link index: %w", err)
	}

	wantHash := btree.NameHash(name)
	for _, rec := range records {
		if rec.NameHash != wantHash {
			continue
		}
		data, err := fh.GetObject(r, rec.HeapID)
		if err != nil {
			return nil, false, fmt.Errorf("dereferencing dense link: %w", err)
		}
		msg, err := message.Parse(message.TypeLink, data, 0, r)
		if err != nil {
			return nil, false, fmt.Errorf("parsing dense link: %w", err)
		}
		link := msg.(*message.Link)
		if link.Name == name {
			return link, true, nil
		}
	}
	return nil, false, nil
}

// denseLinkNames returns the names of every densely stored link on header,
// or nil if the object has no dense link storage.
func denseLinkNames(r *binary.Reader, header *object.Header) ([]string, error) {
	info := header.LinkInfo()
	if info == nil || !info.HasDenseStorage(r) {
		return nil, nil
	}

	fh, err := heap.ReadFractalHeap(r, info.FractalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading link fractal heap: %w", err)
	}
	records, err := btree.ReadNameIndex(r, info.NameBTreeAddress, btree.BTreeV2TypeLinkName)
	if err != nil {
		return nil, fmt.Errorf("reading dense link index: %w", err)
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		data, err := fh.GetObject(r, rec.HeapID)
		if err != nil {
			return nil, fmt.Errorf("dereferencing dense link: %w", err)
		}
		msg, err := message.Parse(message.TypeLink, data, 0, r)
		if err != nil {
			return nil, fmt.Errorf("parsing dense link: %w", err)
		}
		names = append(names, msg.(*message.Link).Name)
	}
	return names, nil
}

// denseFindAttr looks up name among an object's densely stored attributes.
// It returns (nil, false, nil) if the object has no dense attribute
// storage, or if dense storage exists but does not contain name.
func denseFindAttr(r *binary.Reader, header *object.Header, name string) (*message.Attribute, bool, error) {
	info := header.AttributeInfo()
	if info == nil || !info.HasDenseStorage(r) {
		return nil, false, nil
	}

	fh, err := heap.ReadFractalHeap(r, info.FractalHeapAddress)
	if err != nil {
		return nil, false, fmt.Errorf("reading attribute fractal heap: %w", err)
	}
	records, err := btree.ReadNameIndex(r, info.NameBTreeAddress, btree.BTreeV2TypeAttrName)
	if err != nil {
		return nil, false, fmt.Errorf("reading dense attribute index: %w", err)
	}

	wantHash := btree.NameHash(name)
	for _, rec := range records {
		if rec.NameHash != wantHash {
			continue
		}
		data, err := fh.GetObject(r, rec.HeapID)
		if err != nil {
			return nil, false, fmt.Errorf("dereferencing dense attribute: %w", err)
		}
		msg, err := message.Parse(message.TypeAttribute, data, 0, r)
		if err != nil {
			return nil, false, fmt.Errorf("parsing dense attribute: %w", err)
		}
		attr := msg.(*message.Attribute)
		if attr.Name == name {
			return attr, true, nil
		}
	}
	return nil, false, nil
}

// denseAttrNames returns the names of every densely stored attribute on
// header, or nil if the object has no dense attribute storage.
func denseAttrNames(r *binary.Reader, header *object.Header) ([]string, error) {
	info := header.AttributeInfo()
	if info == nil || !info.HasDenseStorage(r) {
		return nil, nil
	}

	fh, err := heap.ReadFractalHeap(r, info.FractalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading attribute fractal heap: %w", err)
	}
	records, err := btree.ReadNameIndex(r, info.NameBTreeAddress, btree.BTreeV2TypeAttrName)
	if err != nil {
		return nil, fmt.Errorf("reading dense attribute index: %w", err)
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		data, err := fh.GetObject(r, rec.HeapID)
		if err != nil {
			return nil, fmt.Errorf("dereferencing dense attribute: %w", err)
		}
		msg, err := message.Parse(message.TypeAttribute, data, 0, r)
		if err != nil {
			return nil, fmt.Errorf("parsing dense attribute: %w", err)
		}
		names = append(names, msg.(*message.Attribute).Name)
	}
	return names, nil
}
