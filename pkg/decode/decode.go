// Package decode turns raw report bytes into text.
//
// Exports come from two families of producers: Chinese-locale systems that
// write UTF-8, UTF-16 or Big5, and Western-locale systems that write UTF-8 or
// Windows-1252. Decode tries those encodings in a fixed order and returns the
// first one that decodes cleanly. The order matters: a byte sequence can be
// valid under several encodings with different meanings.
package decode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/agentstation/rmarecon/pkg/errors"
)

// Name identifies a supported encoding.
type Name string

// Supported encodings, in priority order.
const (
	UTF8        Name = "utf-8"
	UTF16       Name = "utf-16"
	Big5        Name = "big5"
	Windows1252 Name = "windows-1252"
)

const bom = '\uFEFF'

// Result is decoded text along with the encoding that produced it.
type Result struct {
	Text     string
	Encoding Name
}

type attempt struct {
	name   Name
	decode func([]byte) (string, bool)
}

// order is the fixed priority list. Do not reorder.
var order = []attempt{
	{UTF8, decodeUTF8},
	{UTF16, decodeUTF16},
	{Big5, strict(traditionalchinese.Big5)},
	{Windows1252, decodeWindows1252},
}

// Order returns the encodings Decode tries, in priority order.
func Order() []Name {
	names := make([]Name, len(order))
	for i, a := range order {
		names[i] = a.name
	}
	return names
}

// Decode returns the text of data under the first encoding in Order that
// decodes it without error. A leading byte-order mark is removed.
func Decode(data []byte) (Result, error) {
	for _, a := range order {
		if text, ok := a.decode(data); ok {
			return Result{Text: strings.TrimPrefix(text, string(bom)), Encoding: a.name}, nil
		}
	}
	tried := make([]string, len(order))
	for i, a := range order {
		tried[i] = string(a.name)
	}
	return Result{}, errors.NewDecodeError("", tried)
}

// String decodes data and returns only the text.
func String(data []byte) (string, error) {
	res, err := Decode(data)
	return res.Text, err
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// decodeUTF16 only accepts input that announces itself with a byte-order
// mark; without one any even-length input would "decode".
func decodeUTF16(data []byte) (string, bool) {
	if len(data)%2 != 0 {
		return "", false
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xFE}) && !bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return "", false
	}
	return strict(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM))(data)
}

// decodeWindows1252 rejects the five byte values Windows-1252 leaves
// undefined. x/text maps them to C1 controls, which would make this fallback
// accept every possible input.
func decodeWindows1252(data []byte) (string, bool) {
	for _, b := range data {
		switch b {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			return "", false
		}
	}
	return strict(charmap.Windows1252)(data)
}

// strict wraps an x/text encoding so that any replacement character in the
// output counts as a failure. The x/text decoders substitute U+FFFD for
// invalid sequences instead of returning an error.
func strict(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		if bytes.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return string(out), true
	}
}
