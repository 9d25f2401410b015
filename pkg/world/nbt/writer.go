// Package nbt encodes the subset of the Named Binary Tag format that chunk
// export needs: compounds, lists and the scalar and array tags they carry.
// Output is big-endian and uncompressed; compression belongs to the region
// file.
package nbt

import (
	"encoding/binary"
	"io"
	"math"
)

// Tag type IDs.
const (
	TagEnd       byte = 0
	TagByte      byte = 1
	TagShort     byte = 2
	TagInt       byte = 3
	TagLong      byte = 4
	TagFloat     byte = 5
	TagDouble    byte = 6
	TagByteArray byte = 7
	TagString    byte = 8
	TagList      byte = 9
	TagCompound  byte = 10
	TagIntArray  byte = 11
	TagLongArray byte = 12
)

// Writer streams tags to an io.Writer. The first write error is kept and
// every later call becomes a no-op, so callers check Err once at the end.
//
// Named tags (Write*, BeginCompound, BeginList) carry a type byte and a name.
// Elements of a list carry neither: after BeginList the caller writes count
// bare payloads of the declared type with the List* methods, or, for a list
// of compounds, the fields of each element followed by EndCompound.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err reports the first failed write.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) putByte(v byte) {
	w.write([]byte{v})
}

func (w *Writer) putUint16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *Writer) putInt32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	w.write(buf[:])
}

func (w *Writer) putInt64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	w.write(buf[:])
}

// putString writes a length-prefixed string payload.
func (w *Writer) putString(s string) {
	w.putUint16(uint16(len(s)))
	if len(s) > 0 {
		w.write([]byte(s))
	}
}

func (w *Writer) header(tag byte, name string) {
	w.putByte(tag)
	w.putString(name)
}

// BeginCompound opens a named compound. The root compound has an empty
// name.
func (w *Writer) BeginCompound(name string) {
	w.header(TagCompound, name)
}

// EndCompound closes the innermost open compound, named or list element.
func (w *Writer) EndCompound() {
	w.putByte(TagEnd)
}

// WriteTagByte writes a byte tag.
func (w *Writer) WriteTagByte(name string, v byte) {
	w.header(TagByte, name)
	w.putByte(v)
}

func (w *Writer) WriteInt(name string, v int32) {
	w.header(TagInt, name)
	w.putInt32(v)
}

func (w *Writer) WriteLong(name string, v int64) {
	w.header(TagLong, name)
	w.putInt64(v)
}

func (w *Writer) WriteString(name, v string) {
	w.header(TagString, name)
	w.putString(v)
}

// WriteLongArray writes a long array tag. Packed block states, biomes and
// heightmaps all travel as long arrays.
func (w *Writer) WriteLongArray(name string, v []int64) {
	w.header(TagLongArray, name)
	w.putInt32(int32(len(v)))
	for _, x := range v {
		w.putInt64(x)
	}
}

// BeginList opens a list of count elements of type elem. An empty list
// still needs its element type; TagEnd is accepted for it.
func (w *Writer) BeginList(name string, elem byte, count int32) {
	w.header(TagList, name)
	w.putByte(elem)
	w.putInt32(count)
}

// ListString writes one element of a TagString list.
func (w *Writer) ListString(v string) {
	w.putString(v)
}

// ListDouble writes one element of a TagDouble list.
func (w *Writer) ListDouble(v float64) {
	w.putInt64(int64(math.Float64bits(v)))
}
