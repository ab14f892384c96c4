package stream

import (
	"bufio"
	"io"
	"strings"
)

// Decoder reads a text/event-stream body and yields the data payload of
// each event. Comment lines and fields other than data are ignored.
type Decoder struct {
	reader *bufio.Reader
	data   strings.Builder
	done   bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: bufio.NewReader(r)}
}

// Next returns the next event payload. Multi-line data fields are joined
// with a newline. It returns io.EOF once the body is exhausted; a pending
// event without a trailing blank line is still delivered first.
func (d *Decoder) Next() ([]byte, error) {
	if d.done {
		return nil, io.EOF
	}
	for {
		line, err := d.reader.ReadString('\n')
		if line != "" {
			trim := strings.TrimRight(line, "\r\n")
			switch {
			case trim == "":
				if payload, ok := d.flush(); ok {
					return payload, nil
				}
			case strings.HasPrefix(trim, ":"):
				// comment / keep-alive
			case strings.HasPrefix(trim, "data:"):
				value := strings.TrimPrefix(trim, "data:")
				value = strings.TrimPrefix(value, " ")
				if d.data.Len() > 0 {
					d.data.WriteByte('\n')
				}
				d.data.WriteString(value)
			}
		}
		if err != nil {
			d.done = true
			if payload, ok := d.flush(); ok && err == io.EOF {
				return payload, nil
			}
			return nil, err
		}
	}
}

func (d *Decoder) flush() ([]byte, bool) {
	if d.data.Len() == 0 {
		return nil, false
	}
	payload := []byte(d.data.String())
	d.data.Reset()
	if strings.TrimSpace(string(payload)) == "" {
		return nil, false
	}
	return payload, true
}
