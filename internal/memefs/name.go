// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package memefs

import "strings"

// Directory names use a packed 8.3 form: the name part occupies bytes 0..7
// and the extension bytes 8..10, both left-justified and nul-padded. Case
// is preserved. A name with no extension leaves bytes 8..10 at nul.

const (
	maxNameLen  = 8
	maxExtLen   = 3
	maxTotalLen = 12
)

// EncodeName packs an external "NAME.EXT" (or bare "NAME") into the
// on-disk 11-byte form. The split happens on the final dot. Length limits
// are enforced here; character validation is left to the caller.
func EncodeName(name string) ([11]byte, error) {
	var packed [11]byte

	if len(name) > maxTotalLen {
		return packed, ErrNameTooLong
	}

	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}

	if len(base) > maxNameLen || len(ext) > maxExtLen {
		return packed, ErrNameTooLong
	}

	copy(packed[:maxNameLen], base)
	copy(packed[maxNameLen:], ext)
	return packed, nil
}

// DecodeName converts the packed 11-byte form back to "NAME.EXT". The dot
// is emitted only when the extension has at least one non-nul byte.
func DecodeName(packed [11]byte) string {
	var sb strings.Builder

	for i := 0; i < maxNameLen && packed[i] != 0; i++ {
		sb.WriteByte(packed[i])
	}

	if packed[maxNameLen] != 0 {
		sb.WriteByte('.')
		for i := maxNameLen; i < len(packed) && packed[i] != 0; i++ {
			sb.WriteByte(packed[i])
		}
	}
	return sb.String()
}

// validNameByte reports whether b may appear in a stored filename. The
// permitted set is A-Z, a-z, 0-9 and the symbols ^ _ - = |.
func validNameByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	}

	switch b {
	case '^', '_', '-', '=', '|':
		return true
	}
	return false
}

// checkNameBytes validates every non-padding byte of a packed filename.
func checkNameBytes(packed [11]byte) error {
	for _, b := range packed {
		if b != 0 && !validNameByte(b) {
			return ErrBadName
		}
	}
	return nil
}
