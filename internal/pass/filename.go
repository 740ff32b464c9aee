package pass

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const filenameSuffix = "BusinessCard.pkpass"

var (
	unsafeFilenameChars   = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)
	nonASCIIFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)
)

// Filename returns the download name for a card holder, e.g. "John_Doe_BusinessCard.pkpass".
// Whitespace becomes underscores and characters unsafe in a Content-Disposition header are dropped.
// Letters outside ASCII are kept.
func Filename(name string) string {
	return withFilenameSuffix(holderBase(name))
}

// ASCIIFilename is Filename reduced to ASCII: accents are stripped ("Zoë" -> "Zoe") and any
// other non-ASCII character is dropped.
func ASCIIFilename(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	base, _, err := transform.String(stripMarks, holderBase(name))
	if err != nil {
		base = ""
	}
	base = nonASCIIFilenameChars.ReplaceAllString(base, "")
	return withFilenameSuffix(strings.Trim(base, "_."))
}

// ContentDisposition returns the attachment header value for a card holder's pass.
//
// filename is always ASCII. When the holder's name has non-ASCII letters the UTF-8 name is
// added as an RFC 6266 filename* parameter, which browsers prefer.
func ContentDisposition(name string) string {
	ascii := ASCIIFilename(name)
	value := `attachment; filename="` + ascii + `"`
	if full := Filename(name); full != ascii {
		value += "; filename*=UTF-8''" + encodeExtValue(full)
	}
	return value
}

func holderBase(name string) string {
	base := strings.Join(strings.Fields(name), "_")
	return unsafeFilenameChars.ReplaceAllString(base, "")
}

func withFilenameSuffix(base string) string {
	if base == "" {
		return filenameSuffix
	}
	return base + "_" + filenameSuffix
}

// encodeExtValue percent-encodes every byte outside the RFC 5987 attr-char set
func encodeExtValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
