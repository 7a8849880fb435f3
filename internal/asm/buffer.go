package asm

import "encoding/binary"

// CodeSegment is a growable segment where encoded machine instructions are
// written.
//
// To write an instruction, the program calls Next to obtain a buffer view
// positioned at the end of the segment. A buffer can be Reset to discard
// everything written through it, which is how a failed instruction is rolled
// back without disturbing the instructions encoded before it.
//
// The zero value is a valid, empty code segment.
type CodeSegment struct {
	code []byte
	size int
}

// NewCodeSegment constructs a CodeSegment value from a byte slice. The bytes
// of the slice are treated as already written.
func NewCodeSegment(code []byte) *CodeSegment {
	return &CodeSegment{code: code, size: len(code)}
}

// Size returns the number of bytes written to the segment.
func (seg *CodeSegment) Size() int {
	return seg.size
}

// Bytes returns the bytes written to the segment.
//
// The returned slice remains valid until more bytes are written to a buffer
// of the code segment.
func (seg *CodeSegment) Bytes() []byte {
	return seg.code[:seg.size:seg.size]
}

// Next returns a buffer pointed at the end of the code segment to support
// writing more code to it.
//
// Buffers are passed by value, but they hold a reference to the code segment
// that they were created from.
func (seg *CodeSegment) Next() Buffer {
	return Buffer{seg: seg, off: seg.size}
}

func (seg *CodeSegment) append(n int) []byte {
	i := seg.size
	j := seg.size + n
	if j > len(seg.code) {
		seg.grow(n)
	}
	seg.size = j
	return seg.code[i:j:j]
}

func (seg *CodeSegment) write(b []byte) {
	copy(seg.append(len(b)), b)
}

func (seg *CodeSegment) writeByte(b byte) {
	seg.size++
	if seg.size > len(seg.code) {
		seg.grow(0)
	}
	seg.code[seg.size-1] = b
}

func (seg *CodeSegment) grow(n int) {
	size := len(seg.code)
	want := seg.size + n
	if size >= want {
		return
	}
	if size == 0 {
		size = 64
	}
	for size < want {
		size *= 2
	}
	b := make([]byte, size)
	copy(b, seg.code)
	seg.code = b
}

// Buffer is a reference type representing a section beginning at the end of a
// code segment where new instructions can be written.
type Buffer struct {
	seg *CodeSegment
	off int
}

// Offset returns the position of the buffer's first byte in the segment.
func (buf Buffer) Offset() int {
	return buf.off
}

func (buf Buffer) Len() int {
	return buf.seg.size - buf.off
}

func (buf Buffer) Bytes() []byte {
	i := buf.off
	j := buf.seg.size
	return buf.seg.code[i:j:j]
}

// Reset discards every byte written through buf.
func (buf Buffer) Reset() {
	buf.seg.size = buf.off
}

func (buf Buffer) Truncate(n int) {
	buf.seg.size = buf.off + n
}

func (buf Buffer) WriteByte(b byte) error {
	buf.seg.writeByte(b)
	return nil
}

func (buf Buffer) WriteUint16(u uint16) {
	binary.LittleEndian.PutUint16(buf.seg.append(2), u)
}

func (buf Buffer) WriteUint32(u uint32) {
	binary.LittleEndian.PutUint32(buf.seg.append(4), u)
}

func (buf Buffer) WriteUint64(u uint64) {
	binary.LittleEndian.PutUint64(buf.seg.append(8), u)
}

func (buf Buffer) Write(b []byte) (int, error) {
	buf.seg.write(b)
	return len(b), nil
}
