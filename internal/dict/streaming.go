package dict

import "io"

// bomSkippingReader strips a leading UTF-8 BOM (0xEF 0xBB 0xBF) before the
// CSV reader sees the stream. Spreadsheet exports on Windows routinely
// prepend one, and a BOM left in place corrupts the first reading column.
type bomSkippingReader struct {
	r       io.Reader
	checked bool
	pending []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{r: r}
}

func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var head [3]byte
		n, err := io.ReadFull(b.r, head[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 {
			if n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
				// BOM consumed; nothing carries over.
			} else {
				b.pending = append(b.pending, head[:n]...)
			}
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}

	return b.r.Read(p)
}
