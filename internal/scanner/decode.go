package scanner

import (
	"os"
	"strings"
	"unicode/utf8"
)

// readScript reads a script file as text. Valid UTF-8 is used as-is;
// invalid sequences fall back to a byte-preserving Latin-1 decode so a
// legacy-encoded file still yields every byte as some rune rather than
// failing the scan.
func readScript(path string, maxSize int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", &tooLargeError{path: path, size: info.Size()}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

func decodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}

type tooLargeError struct {
	path string
	size int64
}

func (e *tooLargeError) Error() string {
	return "script exceeds size limit: " + e.path
}
