package pampac

import "fmt"

// Location pairs the two matching cursors: a byte offset into the text and an
// index into the Context's annotation sequence.
//
// Text == window end is EndOfText, Ann == number of annotations is EndOfAnns.
type Location struct {
	Text int
	Ann  int
}

func (l Location) String() string {
	return fmt.Sprintf("%d/%d", l.Text, l.Ann)
}

// Less orders locations by text offset, then annotation index.
func (l Location) Less(o Location) bool {
	if l.Text != o.Text {
		return l.Text < o.Text
	}
	return l.Ann < o.Ann
}
