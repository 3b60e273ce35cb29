package dtype

import (
	"math"

	"github.com/h5coro/h5coro/internal/herrors"
	"github.com/h5coro/h5coro/internal/message"
)

// ValueType selects an optional post-read coercion target. The zero value,
// ValueTypeNone, leaves a read's buffer in its native HDF5 Go type.
type ValueType int

const (
	// ValueTypeNone performs no coercion; Decode/Read return the dataset's
	// native Go type.
	ValueTypeNone ValueType = iota
	// ValueTypeInteger coerces every element to a uniform int64.
	ValueTypeInteger
	// ValueTypeReal coerces every element to a uniform float64.
	ValueTypeReal
)

// Coerce converts a materialized read buffer into a uniform []int64 or
// []float64 slice, extending Convert with the post-read coercion path: the
// buffer is copied element-by-element into the 64-bit target type. Accepted
// source classes are fixed-point and floating-point; a string source
// coerces to integers only, by copying its ASCII bytes up to the first NUL
// and recomputing the element count from that NUL rather than trusting
// numElements. Unsupported source classes are a fatal error, never a
// silent drop.
//
// Coerce returns the coerced slice and the (possibly revised) element
// count alongside it.
func Coerce(dt *message.Datatype, data []byte, numElements uint64, vt ValueType) (interface{}, uint64, error) {
	if vt == ValueTypeNone {
		return nil, numElements, nil
	}
	if dt == nil {
		return nil, 0, herrors.Wrap(herrors.CodeFormat, herrors.SeverityError, "coercion: nil datatype")
	}

	switch dt.Class {
	case message.ClassString:
		if vt != ValueTypeInteger {
			return nil, 0, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError,
				"coercion: string source only coerces to integer, not real")
		}
		return coerceStringToInt(data)
	case message.ClassFixedPoint, message.ClassFloatPoint:
		return coerceNumeric(dt, data, numElements, vt)
	default:
		return nil, 0, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError,
			"coercion: unsupported source datatype class %d", dt.Class)
	}
}

// coerceNumeric copies every element, read according to dt's native
// fixed-point/float-point layout, into a uniform int64 or float64 slice.
func coerceNumeric(dt *message.Datatype, data []byte, n uint64, vt ValueType) (interface{}, uint64, error) {
	size := int(dt.Size)
	order := ByteOrder(dt)

	elementAt := func(i uint64) (float64, error) {
		offset := int(i) * size
		if offset+size > len(data) {
			return 0, herrors.Wrap(herrors.CodeResource, herrors.SeverityError,
				"coercion: element %d at offset %d exceeds %d-byte buffer", i, offset, len(data))
		}
		elem := data[offset : offset+size]

		switch dt.Class {
		case message.ClassFixedPoint:
			switch size {
			case 1:
				if dt.Signed {
					return float64(int8(elem[0])), nil
				}
				return float64(elem[0]), nil
			case 2:
				v := order.Uint16(elem)
				if dt.Signed {
					return float64(int16(v)), nil
				}
				return float64(v), nil
			case 4:
				v := order.Uint32(elem)
				if dt.Signed {
					return float64(int32(v)), nil
				}
				return float64(v), nil
			case 8:
				v := order.Uint64(elem)
				if dt.Signed {
					return float64(int64(v)), nil
				}
				return float64(v), nil
			default:
				return 0, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError,
					"coercion: unsupported fixed-point size %d", size)
			}
		case message.ClassFloatPoint:
			switch size {
			case 4:
				return float64(math.Float32frombits(order.Uint32(elem))), nil
			case 8:
				return math.Float64frombits(order.Uint64(elem)), nil
			default:
				return 0, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError,
					"coercion: unsupported float size %d", size)
			}
		default:
			return 0, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError,
				"coercion: unsupported source datatype class %d", dt.Class)
		}
	}

	switch vt {
	case ValueTypeInteger:
		out := make([]int64, n)
		for i := uint64(0); i < n; i++ {
			v, err := elementAt(i)
			if err != nil {
				return nil, 0, err
			}
			out[i] = int64(v)
		}
		return out, n, nil
	case ValueTypeReal:
		out := make([]float64, n)
		for i := uint64(0); i < n; i++ {
			v, err := elementAt(i)
			if err != nil {
				return nil, 0, err
			}
			out[i] = v
		}
		return out, n, nil
	default:
		return nil, 0, herrors.Wrap(herrors.CodePipeline, herrors.SeverityError,
			"coercion: unknown value type %d", vt)
	}
}

// coerceStringToInt maps a string buffer's ASCII bytes, up to the first
// NUL, one-for-one into int64 elements, discarding the caller's
// numElements in favor of the NUL-derived count. This is a deliberately
// surprising legacy coercion rule carried over unchanged; it has not been
// checked against real string-coercion test data.
func coerceStringToInt(data []byte) (interface{}, uint64, error) {
	end := len(data)
	for i, b := range data {
		if b == 0 {
			end = i
			break
		}
	}

	out := make([]int64, end)
	for i := 0; i < end; i++ {
		out[i] = int64(data[i])
	}
	return out, uint64(end), nil
}
