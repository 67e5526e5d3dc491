package termui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

func printString(screen tcell.Screen, x *int, y int, st tcell.Style, s string) {
	for _, r := range s {
		screen.SetContent(*x, y, r, nil, st)
		*x += runeWidth(r)
	}
}

func printStyledString(screen tcell.Screen, x *int, y int, base tcell.Style, s StyledString) {
	cur := base
	next := 0
	for i, r := range s.string {
		for next < len(s.styles) && s.styles[next].Start == i {
			cur = s.styles[next].Style
			next++
		}
		screen.SetContent(*x, y, r, nil, cur)
		*x += runeWidth(r)
	}
}

func printIdent(screen tcell.Screen, x, y, width int, st tcell.Style, s string) {
	s = truncate(s, width, "…")
	x += width - stringWidth(s)
	screen.SetContent(x-1, y, ' ', nil, st)
	printString(screen, &x, y, st, s)
}

func printNumber(screen tcell.Screen, x *int, y int, st tcell.Style, n int) {
	printString(screen, x, y, st, fmt.Sprintf("%d", n))
}
