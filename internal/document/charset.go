package document

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeText converts body from charset to UTF-8. While more data is
// expected an incomplete UTF-8 sequence at the end is held back so that it
// is not shown as a replacement character.
func decodeText(body []byte, charset string, finished bool) string {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8", "us-ascii":
		if !finished {
			body = trimIncompleteRune(body)
		}
		return strings.ToValidUTF8(string(body), "�")
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	return string(out)
}

func trimIncompleteRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if !utf8.RuneStart(b[len(b)-i]) {
			continue
		}
		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}
		return b
	}
	return b
}

// prettyJSON indents a complete JSON body. Invalid JSON is shown as
// received.
func prettyJSON(body []byte, text string) string {
	if !gjson.ValidBytes(body) {
		return text
	}
	return string(pretty.Pretty(body))
}
