package clipboard

import (
	"regexp"
	"strings"
)

const (
	MIMEHTML  = "text/html"
	MIMEPlain = "text/plain"
)

const (
	FragmentStart = "<!--StartFragment-->"
	FragmentEnd   = "<!--EndFragment-->"
)

// envelopeHead declares the office, word, OMML and HTML namespaces so Word
// recognises the MathML islands inside the fragment.
const envelopeHead = `<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns:m='http://schemas.microsoft.com/office/2004/12/omml' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<meta charset="utf-8">
<title>WordSmith Content</title>
</head>
<body>
`

const envelopeTail = `
</body>
</html>`

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Representation is one MIME-tagged form of the payload.
type Representation struct {
	MIME string
	Data []byte
}

// Payload is the pair of representations registered together.
type Payload struct {
	RichText  []byte
	PlainText []byte
}

// Representations lists the payload as text/html then text/plain.
func (p Payload) Representations() []Representation {
	return []Representation{
		{MIME: MIMEHTML, Data: p.RichText},
		{MIME: MIMEPlain, Data: p.PlainText},
	}
}

// Pack builds the clipboard payload for an HTML fragment. The fragment is
// embedded as is.
func Pack(html string) Payload {
	return Payload{
		RichText:  []byte(Envelope(html)),
		PlainText: []byte(PlainText(html)),
	}
}

// Envelope wraps html in the Word-compatible document with fragment markers
// on their own lines around it. The fragment is not escaped, so html that
// itself contains FragmentStart or FragmentEnd leaves more than one marker
// in the envelope. Fragment reads from the first start marker to the last
// end marker, which still recovers html unchanged.
func Envelope(html string) string {
	var sb strings.Builder
	sb.Grow(len(envelopeHead) + len(html) + len(envelopeTail) + 64)
	sb.WriteString(envelopeHead)
	sb.WriteString(FragmentStart)
	sb.WriteByte('\n')
	sb.WriteString(html)
	sb.WriteByte('\n')
	sb.WriteString(FragmentEnd)
	sb.WriteString(envelopeTail)
	return sb.String()
}

// Fragment returns the text between the first start marker and the last end
// marker of an envelope.
func Fragment(envelope string) (string, bool) {
	start := strings.Index(envelope, FragmentStart)
	end := strings.LastIndex(envelope, FragmentEnd)
	if start < 0 || end < 0 || end < start+len(FragmentStart) {
		return "", false
	}
	inner := envelope[start+len(FragmentStart) : end]
	inner = strings.TrimPrefix(inner, "\n")
	inner = strings.TrimSuffix(inner, "\n")
	return inner, true
}

// PlainText replaces every angle-bracket span with a single space. Entities
// and whitespace are left alone.
func PlainText(html string) string {
	return tagPattern.ReplaceAllString(html, " ")
}
