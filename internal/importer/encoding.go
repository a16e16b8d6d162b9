package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Decode wraps r so that it yields UTF-8 for a statement stored in the named
// encoding. Supported: utf-8 (default), windows-1250, iso-8859-2.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1250", "cp1250":
		return transform.NewReader(r, charmap.Windows1250.NewDecoder()), nil
	case "iso-8859-2", "latin2":
		return transform.NewReader(r, charmap.ISO8859_2.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported statement encoding %q", encoding)
	}
}
