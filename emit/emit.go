// Package emit is the low-level instruction-stream writer (spec.md
// §4.4, §6.4): a single growing vector of signed integers plus a
// parallel line-info table, written to only by the code generator.
// Shaped after the teacher's pkg/vm/emit package (pure functions over
// a shared growing writer) but over int32 words instead of bytes,
// matching this bytecode's wire format.
package emit

import "math"

// LineEntry is one (line, file, code_offset) triple, emitted only
// when (line, file) differs from the previous entry (spec.md §6.4).
type LineEntry struct {
	Line       int
	File       int
	CodeOffset int
}

// Program is the growing code + line-info buffer the generator
// writes into.
type Program struct {
	Code  []int32
	Lines []LineEntry

	lastLine int
	lastFile int
	hasLine  bool
}

// Len returns the current code offset (the position the next Emit
// will land at).
func (p *Program) Len() int { return len(p.Code) }

// Int appends a raw int32 word.
func (p *Program) Int(v int32) { p.Code = append(p.Code, v) }

// Op appends an opcode word.
func (p *Program) Op(op int32) { p.Int(op) }

// Int64 appends a 64-bit int value split across two int32 words
// (high word first), since the code stream's native word is int32.
func (p *Program) Int64(v int64) {
	p.Int(int32(v >> 32))
	p.Int(int32(v))
}

// Float appends a float64 bit-pattern across two int32 words.
func (p *Program) Float(v float64) { p.Int64(int64(math.Float64bits(v))) }

// String appends a string's bytes as individual int32 words followed
// by a zero terminator (spec.md §4.4: "PUSHSTR bytes..0").
func (p *Program) String(s string) {
	for _, b := range []byte(s) {
		p.Int(int32(b))
	}
	p.Int(0)
}

// Reserve appends a single placeholder word and returns its offset,
// for later patching (a call-site fixup slot, a jump target, a
// forward-referenced count).
func (p *Program) Reserve() int {
	off := len(p.Code)
	p.Int(0)
	return off
}

// PatchAt overwrites the word at offset, used for fixups and jump
// target back-patching.
func (p *Program) PatchAt(offset int, v int32) { p.Code[offset] = v }

// At returns the word currently stored at offset.
func (p *Program) At(offset int) int32 { return p.Code[offset] }

// MarkLine appends a line-info entry unless (line, file) matches the
// previous one (spec.md §6.4); the very first call always records.
func (p *Program) MarkLine(line, file int) {
	if p.hasLine && line == p.lastLine && file == p.lastFile {
		return
	}
	p.Lines = append(p.Lines, LineEntry{Line: line, File: file, CodeOffset: p.Len()})
	p.lastLine, p.lastFile, p.hasLine = line, file, true
}
