package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedEncoding is returned when raw bytes cannot be decoded as text.
var ErrUnsupportedEncoding = errors.New("unsupported text encoding")

// Decode turns raw bytes into a UTF-8 string. A charset declared in contentType
// is honoured first; otherwise UTF-8 is tried, then Windows-1252.
func Decode(raw []byte, contentType string) (string, error) {
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", fmt.Errorf("%w: content looks binary", ErrUnsupportedEncoding)
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	if enc, name := declaredEncoding(contentType); enc != nil {
		text, err := enc.NewDecoder().Bytes(raw)
		if err == nil && !bytes.ContainsRune(text, utf8.RuneError) {
			return string(text), nil
		}
		return "", fmt.Errorf("%w: declared charset %s does not match content", ErrUnsupportedEncoding, name)
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	text, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil || bytes.ContainsRune(text, utf8.RuneError) {
		return "", fmt.Errorf("%w: neither UTF-8 nor Windows-1252", ErrUnsupportedEncoding)
	}
	return string(text), nil
}

// declaredEncoding returns the non-UTF-8 encoding named by a Content-Type header, if any.
func declaredEncoding(contentType string) (encoding.Encoding, string) {
	if contentType == "" {
		return nil, ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ""
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return nil, ""
	}
	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return nil, ""
	}
	return enc, name
}
