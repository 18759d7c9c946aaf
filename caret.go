package promptline

import "unicode/utf8"

// Carets are addressed in UTF-16 code units, the way browser-hosted editors
// report them. Go strings are UTF-8, so the helpers below convert between the
// two. Invalid UTF-8 bytes count as one code unit each.

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// ByteOffset converts a UTF-16 caret into a byte offset into s. Carets past
// the end map to len(s); a caret inside a surrogate pair rounds down to the
// start of its rune.
func ByteOffset(s string, caret int) int {
	if caret <= 0 {
		return 0
	}
	units := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		units += runeUnits(r)
		if units > caret {
			return i
		}
		i += size
		if units == caret {
			return i
		}
	}
	return len(s)
}

// UTF16Offset converts a byte offset into s into a UTF-16 caret.
func UTF16Offset(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	if offset <= 0 {
		return 0
	}
	return UTF16Len(s[:offset])
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
