package termui

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// mIRC formatting control codes, per <https://modern.ircdocs.horse/formatting.html>.
const (
	ctrlBold          = 0x02
	ctrlColor         = 0x03
	ctrlReset         = 0x0F
	ctrlReverse       = 0x16
	ctrlItalic        = 0x1D
	ctrlStrikeThrough = 0x1E
	ctrlUnderline     = 0x1F
)

var widthCond = runewidth.Condition{}

func runeWidth(r rune) int       { return widthCond.RuneWidth(r) }
func stringWidth(s string) int   { return widthCond.StringWidth(s) }
func truncate(s string, w int, tail string) string {
	return widthCond.Truncate(s, w, tail)
}

var baseColorCodes = []tcell.Color{
	tcell.ColorWhite, tcell.ColorBlack, tcell.ColorBlue, tcell.ColorGreen,
	tcell.ColorRed, tcell.ColorBrown, tcell.ColorPurple, tcell.ColorOrange,
	tcell.ColorYellow, tcell.ColorLightGreen, tcell.ColorTeal, tcell.ColorLightCyan,
	tcell.ColorLightBlue, tcell.ColorPink, tcell.ColorGrey, tcell.ColorLightGrey,
}

var hexColorCodes = []int32{
	0x470000, 0x472100, 0x474700, 0x324700, 0x004700, 0x00472c, 0x004747, 0x002747, 0x000047, 0x2e0047, 0x470047, 0x47002a,
	0x740000, 0x743a00, 0x747400, 0x517400, 0x007400, 0x007449, 0x007474, 0x004074, 0x000074, 0x4b0074, 0x740074, 0x740045,
	0xb50000, 0xb56300, 0xb5b500, 0x7db500, 0x00b500, 0x00b571, 0x00b5b5, 0x0063b5, 0x0000b5, 0x7500b5, 0xb500b5, 0xb5006b,
	0xff0000, 0xff8c00, 0xffff00, 0xb2ff00, 0x00ff00, 0x00ffa0, 0x00ffff, 0x008cff, 0x0000ff, 0xa500ff, 0xff00ff, 0xff0098,
	0xff5959, 0xffb459, 0xffff71, 0xcfff60, 0x6fff6f, 0x65ffc9, 0x6dffff, 0x59b4ff, 0x5959ff, 0xc459ff, 0xff66ff, 0xff59bc,
	0xff9c9c, 0xffd39c, 0xffff9c, 0xe2ff9c, 0x9cff9c, 0x9cffdb, 0x9cffff, 0x9cd3ff, 0x9c9cff, 0xdc9cff, 0xff9cff, 0xff94d3,
	0x000000, 0x131313, 0x282828, 0x363636, 0x4d4d4d, 0x656565, 0x818181, 0x9f9f9f, 0xbcbcbc, 0xe2e2e2, 0xffffff,
}

func colorFromCode(code int) tcell.Color {
	switch {
	case code < 0 || 99 <= code:
		return tcell.ColorDefault
	case code < 16:
		return baseColorCodes[code]
	default:
		return tcell.NewHexColor(hexColorCodes[code-16])
	}
}

type rangedStyle struct {
	Start int // byte index at which Style becomes effective
	Style tcell.Style
}

// StyledString is a rendered line with its mIRC formatting codes already
// resolved into byte-ranged tcell styles, grounded on the teacher's
// ui/style.go.
type StyledString struct {
	string
	styles []rangedStyle // sorted, no two elements share a Start
}

func PlainString(s string) StyledString { return StyledString{string: s} }

func (s StyledString) String() string { return s.string }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func parseColorNumber(raw string) (color tcell.Color, n int) {
	if len(raw) == 0 || !isDigit(raw[0]) {
		return
	}
	if len(raw) == 1 || !isDigit(raw[1]) {
		code, _ := strconv.Atoi(raw[:1])
		return colorFromCode(code), 1
	}
	code, _ := strconv.Atoi(raw[:2])
	return colorFromCode(code), 2
}

func parseColor(raw string) (fg, bg tcell.Color, n int) {
	fg, n = parseColorNumber(raw)
	raw = raw[n:]

	if len(raw) == 0 || raw[0] != ',' {
		return fg, tcell.ColorDefault, n
	}

	n++
	bg, p := parseColorNumber(raw[1:])
	n += p

	if bg == tcell.ColorDefault {
		// Lone trailing comma: not part of a color code.
		return fg, tcell.ColorDefault, n - 1
	}
	return fg, bg, n
}

// IRCString parses mIRC formatting control codes out of raw, returning the
// plain text plus the byte-ranged styles they describe.
func IRCString(raw string) StyledString {
	var formatted strings.Builder
	var styles []rangedStyle
	var last tcell.Style

	for len(raw) != 0 {
		r, runeSize := utf8.DecodeRuneInString(raw)
		if r == utf8.RuneError {
			break
		}
		_, _, lastAttrs := last.Decompose()
		current := last

		switch r {
		case ctrlReset:
			current = tcell.StyleDefault
		case ctrlBold:
			current = last.Bold(lastAttrs&tcell.AttrBold == 0)
		case ctrlColor:
			fg, bg, n := parseColor(raw[1:])
			raw = raw[n:]
			if n == 0 {
				current = last.Foreground(tcell.ColorDefault).Background(tcell.ColorDefault)
			} else if bg == tcell.ColorDefault {
				current = last.Foreground(fg)
			} else {
				current = last.Foreground(fg).Background(bg)
			}
		case ctrlReverse:
			current = last.Reverse(lastAttrs&tcell.AttrReverse == 0)
		case ctrlItalic:
			current = last.Italic(lastAttrs&tcell.AttrItalic == 0)
		case ctrlStrikeThrough:
			current = last.StrikeThrough(lastAttrs&tcell.AttrStrikeThrough == 0)
		case ctrlUnderline:
			current = last.Underline(lastAttrs&tcell.AttrUnderline == 0)
		default:
			formatted.WriteRune(r)
		}

		if last != current {
			if len(styles) != 0 && styles[len(styles)-1].Start == formatted.Len() {
				styles[len(styles)-1] = rangedStyle{Start: formatted.Len(), Style: current}
			} else {
				styles = append(styles, rangedStyle{Start: formatted.Len(), Style: current})
			}
		}
		last = current
		raw = raw[runeSize:]
	}

	return StyledString{string: formatted.String(), styles: styles}
}

type styledStringBuilder struct {
	strings.Builder
	styles []rangedStyle
}

func (sb *styledStringBuilder) WriteStyledString(s StyledString) {
	start := len(sb.styles)
	sb.styles = append(sb.styles, s.styles...)
	for i := start; i < len(sb.styles); i++ {
		sb.styles[i].Start += sb.Len()
	}
	sb.WriteString(s.string)
}

func (sb *styledStringBuilder) StyledString() StyledString {
	return StyledString{string: sb.String(), styles: sb.styles}
}

// DisplayWidth measures the on-screen width of a string that may still
// carry mIRC formatting control codes, skipping the codes themselves (and
// their color-number digits) rather than counting them as visible
// characters. Grounded on the teacher's ui/width.go widthBuffer.
func DisplayWidth(s string) int {
	return stringWidth(IRCString(s).string)
}

// HighlightURLs renders text as a StyledString with each occurrence of the
// strings in urls underlined, per SPEC_FULL.md §9's host-side URL
// highlighting. urls is expected to come from irc.ExtractURLs(text); ranges
// are matched left to right, each starting the search where the previous
// match ended so repeated URLs each get their own range.
func HighlightURLs(text string, urls []string) StyledString {
	if len(urls) == 0 {
		return PlainString(text)
	}

	var sb styledStringBuilder
	pos := 0
	for _, u := range urls {
		i := strings.Index(text[pos:], u)
		if i < 0 {
			continue
		}
		start := pos + i
		end := start + len(u)
		sb.WriteStyledString(PlainString(text[pos:start]))
		sb.styles = append(sb.styles, rangedStyle{Start: sb.Len(), Style: tcell.StyleDefault.Underline(true)})
		sb.WriteString(text[start:end])
		sb.styles = append(sb.styles, rangedStyle{Start: sb.Len(), Style: tcell.StyleDefault})
		pos = end
	}
	sb.WriteStyledString(PlainString(text[pos:]))

	return sb.StyledString()
}

// RenderMessage renders a "prefix message" line with the message portion's
// URLs underlined, for PRIVMSG/NOTICE-derived events.
func RenderMessage(prefix, text string, urls []string) StyledString {
	var sb styledStringBuilder
	sb.WriteStyledString(PlainString(prefix))
	sb.WriteStyledString(HighlightURLs(text, urls))
	return sb.StyledString()
}
