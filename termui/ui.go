// Package termui is a minimal tcell-based terminal front-end: one
// scrolling log pane, a status line, and one input line. Grounded on the
// teacher's ui.UI (screen lifecycle, scrolling, editor wiring) trimmed from
// a multi-buffer bouncer-aware display down to the single-connection scope
// this module implements.
package termui

import (
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Line is one rendered entry in the scrollback log.
type Line struct {
	Time   time.Time
	Styled StyledString
}

// UI owns the terminal screen, the scrollback log, the status line, and the
// input editor.
type UI struct {
	screen tcell.Screen
	Events chan tcell.Event
	exit   atomic.Value // bool

	log       []Line
	scrollAmt int

	status string
	input  editor

	width, height int
}

// New initializes the terminal screen and starts the background event
// pump, grounded on the teacher's ui.New.
func New() (ui *UI, err error) {
	ui = &UI{}

	ui.screen, err = tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err = ui.screen.Init(); err != nil {
		return nil, err
	}

	ui.screen.Clear()
	ui.Events = make(chan tcell.Event, 128)
	go func() {
		for !ui.ShouldExit() {
			ui.Events <- ui.screen.PollEvent()
		}
	}()

	ui.exit.Store(false)
	ui.Resize()

	return ui, nil
}

func (ui *UI) ShouldExit() bool { return ui.exit.Load().(bool) }
func (ui *UI) Exit()            { ui.exit.Store(true) }
func (ui *UI) Close()           { ui.screen.Fini() }

// Resize recomputes layout after a terminal resize and redraws.
func (ui *UI) Resize() {
	ui.width, ui.height = ui.screen.Size()
	ui.input.Resize(ui.width)
	ui.Draw()
}

// AddLine appends a rendered line to the scrollback log.
func (ui *UI) AddLine(s StyledString, t time.Time) {
	ui.log = append(ui.log, Line{Time: t, Styled: s})
	ui.Draw()
}

// SetStatus sets the text of the status line (second-to-last row).
func (ui *UI) SetStatus(s string) {
	ui.status = s
	ui.Draw()
}

func (ui *UI) logRows() int {
	rows := ui.height - 2
	if rows < 0 {
		rows = 0
	}
	return rows
}

// ScrollUp scrolls the log half a screen towards older lines.
func (ui *UI) ScrollUp() {
	ui.scrollAmt += ui.logRows() / 2
	if max := len(ui.log) - ui.logRows(); max > 0 && ui.scrollAmt > max {
		ui.scrollAmt = max
	}
	ui.Draw()
}

// ScrollDown scrolls the log half a screen towards newer lines.
func (ui *UI) ScrollDown() {
	ui.scrollAmt -= ui.logRows() / 2
	if ui.scrollAmt < 0 {
		ui.scrollAmt = 0
	}
	ui.Draw()
}

// InputRune appends r to the input line at the cursor.
func (ui *UI) InputRune(r rune) {
	ui.input.PutRune(r)
	ui.Draw()
}

// InputBackspace deletes the rune before the cursor.
func (ui *UI) InputBackspace() bool {
	ok := ui.input.RemRune()
	ui.Draw()
	return ok
}

// InputLeft/InputRight move the input cursor.
func (ui *UI) InputLeft()  { ui.input.Left(); ui.Draw() }
func (ui *UI) InputRight() { ui.input.Right(); ui.Draw() }

// InputLen reports how many runes are in the input line.
func (ui *UI) InputLen() int { return ui.input.TextLen() }

// InputIsCommand reports whether the input line currently starts with '/'.
func (ui *UI) InputIsCommand() bool { return ui.input.IsCommand() }

// InputEnter flushes and returns the input line's content.
func (ui *UI) InputEnter() string {
	content := ui.input.Flush()
	ui.Draw()
	return content
}

// Draw repaints the whole screen: scrollback log, status line, input line.
func (ui *UI) Draw() {
	st := tcell.StyleDefault
	ui.screen.Clear()

	rows := ui.logRows()
	if rows > 0 {
		start := len(ui.log) - rows - ui.scrollAmt
		if start < 0 {
			start = 0
		}
		end := start + rows
		if end > len(ui.log) {
			end = len(ui.log)
		}
		for i, line := range ui.log[start:end] {
			y := i
			x := 0
			printString(ui.screen, &x, y, st, line.Time.Format("15:04 "))
			printStyledString(ui.screen, &x, y, st, line.Styled)
		}
	}

	if ui.height >= 2 {
		x := 0
		printString(ui.screen, &x, ui.height-2, st.Reverse(true), ui.status)
		for x < ui.width {
			ui.screen.SetContent(x, ui.height-2, ' ', nil, st.Reverse(true))
			x++
		}
	}

	if ui.height >= 1 {
		ui.input.Draw(ui.screen, ui.height-1)
	}

	ui.screen.Show()
}
