package wire

import (
	"fmt"
	"io"
)

var reasonPhrases = map[int]string{
	200: "OK",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

// WriteResponse frames a response exactly as specified: status line,
// Content-Type, explicit Content-Length, Connection: close, a blank line,
// then the body.
func WriteResponse(w io.Writer, status int, body []byte) error {
	reason, ok := reasonPhrases[status]
	if !ok {
		reason = "Unknown"
	}

	header := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		status, reason, len(body),
	)
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
