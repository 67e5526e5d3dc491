package termui

import "github.com/gdamore/tcell/v2"

// editor is the single input line where the user writes messages and
// commands. Grounded on the teacher's ui/editor.go.
type editor struct {
	text []rune // written runes; empty means no text

	// textWidth[i] is the display width of string(text[:i]); always has
	// len(text)+1 elements, textWidth[0] == 0.
	textWidth []int

	cursorIdx int // index in text of the cursor, or len(text) at the end
	offsetIdx int // elements of text skipped when rendering
	width     int // screen width available to the editor
}

func newEditor(width int) editor {
	return editor{
		text:      []rune{},
		textWidth: []int{0},
		width:     width,
	}
}

func (e *editor) Resize(width int) {
	if width < e.width {
		e.cursorIdx = 0
		e.offsetIdx = 0
	}
	e.width = width
}

func (e *editor) IsCommand() bool {
	return len(e.text) != 0 && e.text[0] == '/'
}

func (e *editor) TextLen() int {
	return len(e.text)
}

func (e *editor) PutRune(r rune) {
	e.text = append(e.text, ' ')
	copy(e.text[e.cursorIdx+1:], e.text[e.cursorIdx:])
	e.text[e.cursorIdx] = r

	rw := runeWidth(r)
	e.textWidth = append(e.textWidth, 0)
	for i := len(e.textWidth) - 1; i > e.cursorIdx; i-- {
		e.textWidth[i] = e.textWidth[i-1] + rw
	}

	e.Right()
}

func (e *editor) RemRune() (ok bool) {
	ok = 0 < e.cursorIdx
	if !ok {
		return
	}
	e.remRuneAt(e.cursorIdx - 1)
	e.Left()
	return
}

func (e *editor) RemRuneForward() (ok bool) {
	ok = e.cursorIdx < len(e.text)
	if !ok {
		return
	}
	e.remRuneAt(e.cursorIdx)
	return
}

func (e *editor) remRuneAt(idx int) {
	rw := e.textWidth[idx+1] - e.textWidth[idx]
	for i := idx + 1; i < len(e.textWidth); i++ {
		e.textWidth[i] -= rw
	}
	copy(e.textWidth[idx+1:], e.textWidth[idx+2:])
	e.textWidth = e.textWidth[:len(e.textWidth)-1]

	copy(e.text[idx:], e.text[idx+1:])
	e.text = e.text[:len(e.text)-1]
}

func (e *editor) Flush() (content string) {
	content = string(e.text)
	e.text = e.text[:0]
	e.textWidth = e.textWidth[:1]
	e.cursorIdx = 0
	e.offsetIdx = 0
	return
}

func (e *editor) Right() {
	if e.cursorIdx == len(e.text) {
		return
	}
	e.cursorIdx++
	if e.width <= e.textWidth[e.cursorIdx]-e.textWidth[e.offsetIdx] {
		e.offsetIdx += 16
		if max := len(e.text) - 1; max < e.offsetIdx {
			e.offsetIdx = max
		}
	}
}

func (e *editor) Left() {
	if e.cursorIdx == 0 {
		return
	}
	e.cursorIdx--
	if e.cursorIdx <= e.offsetIdx {
		e.offsetIdx -= 16
		if e.offsetIdx < 0 {
			e.offsetIdx = 0
		}
	}
}

func (e *editor) Home() {
	e.cursorIdx = 0
	e.offsetIdx = 0
}

func (e *editor) End() {
	e.cursorIdx = len(e.text)
	for e.width < e.textWidth[e.cursorIdx]-e.textWidth[e.offsetIdx]+16 {
		e.offsetIdx++
	}
}

func (e *editor) Draw(screen tcell.Screen, y int) {
	st := tcell.StyleDefault

	x := 0
	i := e.offsetIdx
	for i < len(e.text) && x < e.width {
		r := e.text[i]
		screen.SetContent(x, y, r, nil, st)
		x += runeWidth(r)
		i++
	}
	for x < e.width {
		screen.SetContent(x, y, ' ', nil, st)
		x++
	}

	curStart := e.textWidth[e.cursorIdx] - e.textWidth[e.offsetIdx]
	curEnd := curStart + 1
	if e.cursorIdx+1 < len(e.textWidth) {
		curEnd = e.textWidth[e.cursorIdx+1] - e.textWidth[e.offsetIdx]
	}
	for x := curStart; x < curEnd; x++ {
		screen.ShowCursor(x, y)
	}
}
