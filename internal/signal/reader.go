package signal

import (
	"bufio"
	"io"
	"strings"
)

// Reader reads pasted session descriptions, one per line. Encoded SDPs
// routinely exceed bufio.Scanner's token limit, so lines are read unbounded.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for line-oriented reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next line without its line terminator. An empty line is
// returned as "" so callers can treat it as an empty submission.
// io.EOF is returned once the input is exhausted.
func (r *Reader) Next() (string, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
