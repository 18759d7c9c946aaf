package prompt

import (
	"strings"

	"github.com/Paranoid-AF/promptline"
)

// DeleteWord removes the word before position (a UTF-16 offset). A run of
// spaces directly before the word is deleted together with it. A space is
// appended to any remaining text, and the caret lands right after it.
func DeleteWord(b *Buffer, position int) {
	text := b.Value()
	if text == "" || position <= 0 {
		return
	}

	cut := promptline.ByteOffset(text, position)
	head := text[:cut]
	for {
		i := strings.LastIndexByte(head, ' ')
		trailing := i >= 0 && i == len(head)-1
		if i < 0 {
			head = ""
		} else {
			head = head[:i]
		}
		if !trailing || head == "" {
			break
		}
	}

	if head != "" {
		head += " "
	}
	b.SetValue(head+text[cut:], promptline.UTF16Len(head))
}
