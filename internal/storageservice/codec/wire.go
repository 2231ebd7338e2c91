// Package codec encodes storage records in protobuf wire format.
//
// Decoding keeps every field it does not recognize, including known field
// numbers that arrive with an unexpected wire type, as raw bytes in the
// record's UnknownFields. Encoding writes known fields first and then the
// unknown bytes unchanged, so a record survives a round trip through a
// client that predates some of its fields.
package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dmitrijs2005/storagesync/internal/common"
)

type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
	val []byte
	u   uint64
}

func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedRecord, protowire.ParseError(tagLen))
		}
		valLen := protowire.ConsumeFieldValue(num, typ, b[tagLen:])
		if valLen < 0 {
			return nil, fmt.Errorf("%w: field %d: %v", common.ErrMalformedRecord, num, protowire.ParseError(valLen))
		}

		f := field{num: num, typ: typ, raw: b[:tagLen+valLen]}
		switch typ {
		case protowire.VarintType:
			f.u, _ = protowire.ConsumeVarint(b[tagLen:])
		case protowire.BytesType:
			f.val, _ = protowire.ConsumeBytes(b[tagLen:])
		}
		out = append(out, f)
		b = b[tagLen+valLen:]
	}
	return out, nil
}

// reader accumulates the unknown bytes of one message while its known
// fields are assigned.
type reader struct {
	unknown []byte
}

func (r *reader) skip(f field) {
	r.unknown = append(r.unknown, f.raw...)
}

func (r *reader) unknownFields() []byte {
	if len(r.unknown) == 0 {
		return nil
	}
	return r.unknown
}

func (r *reader) str(f field, dst **string) {
	if f.typ != protowire.BytesType {
		r.skip(f)
		return
	}
	s := string(f.val)
	*dst = &s
}

func (r *reader) strs(f field, dst *[]string) {
	if f.typ != protowire.BytesType {
		r.skip(f)
		return
	}
	*dst = append(*dst, string(f.val))
}

func (r *reader) bytes(f field, dst *[]byte) {
	if f.typ != protowire.BytesType {
		r.skip(f)
		return
	}
	*dst = append([]byte{}, f.val...)
}

func (r *reader) message(f field) ([]byte, bool) {
	if f.typ != protowire.BytesType {
		r.skip(f)
		return nil, false
	}
	return f.val, true
}

func (r *reader) boolean(f field, dst *bool) {
	if f.typ != protowire.VarintType {
		r.skip(f)
		return
	}
	*dst = protowire.DecodeBool(f.u)
}

func (r *reader) uint64(f field, dst *uint64) {
	if f.typ != protowire.VarintType {
		r.skip(f)
		return
	}
	*dst = f.u
}

func (r *reader) uint32(f field, dst *uint32) {
	if f.typ != protowire.VarintType {
		r.skip(f)
		return
	}
	*dst = uint32(f.u)
}

func readEnum[E ~int32](r *reader, f field, dst *E) {
	if f.typ != protowire.VarintType {
		r.skip(f)
		return
	}
	*dst = E(int32(f.u))
}

func readEnumPtr[E ~int32](r *reader, f field, dst **E) {
	if f.typ != protowire.VarintType {
		r.skip(f)
		return
	}
	v := E(int32(f.u))
	*dst = &v
}

type writer struct {
	b []byte
}

func (w *writer) str(num protowire.Number, s *string) {
	if s == nil {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendString(w.b, *s)
}

func (w *writer) strs(num protowire.Number, ss []string) {
	for _, s := range ss {
		w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
		w.b = protowire.AppendString(w.b, s)
	}
}

func (w *writer) bytes(num protowire.Number, v []byte) {
	if v == nil {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendBytes(w.b, v)
}

func (w *writer) message(num protowire.Number, m []byte) {
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendBytes(w.b, m)
}

func (w *writer) boolean(num protowire.Number, v bool) {
	if !v {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, protowire.EncodeBool(v))
}

func (w *writer) uint64(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, v)
}

func writeEnum[E ~int32](w *writer, num protowire.Number, v E) {
	if v == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, uint64(int64(v)))
}

func writeEnumPtr[E ~int32](w *writer, num protowire.Number, v *E) {
	if v == nil {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, uint64(int64(*v)))
}

func (w *writer) raw(b []byte) {
	w.b = append(w.b, b...)
}

func (w *writer) bytesOut() []byte {
	if w.b == nil {
		return []byte{}
	}
	return w.b
}
