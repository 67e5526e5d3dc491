package irc

import "bytes"

// Framer splits an incoming byte stream on CRLF boundaries into complete
// lines, buffering any trailing partial line across pushes. It holds no
// other state and is safe to reuse across the lifetime of one connection;
// per spec.md §5 it is driven synchronously by a single caller, so no
// internal locking is required.
type Framer struct {
	buf []byte
}

// Push appends newly received bytes and returns every complete line framed
// out of the buffer so far, in order. Framing is split-invariant: feeding
// b1 then b2 yields the same lines as feeding b1++b2 in one call.
func (f *Framer) Push(data []byte) [][]byte {
	f.buf = append(f.buf, data...)

	var lines [][]byte
	for {
		i := bytes.Index(f.buf, []byte("\r\n"))
		if i < 0 {
			break
		}
		line := make([]byte, i)
		copy(line, f.buf[:i])
		lines = append(lines, line)
		f.buf = f.buf[i+2:]
	}

	return lines
}
