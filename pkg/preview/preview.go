// Package preview renders a conversion result as Markdown for the terminal.
// MathML islands are flattened to TeX-like text between dollar signs so the
// preview stays readable.
package preview

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var unescaper = strings.NewReplacer(
	`\!\[`, `![`,
	`\[`, `[`,
	`\]`, `]`,
	`\_`, `_`,
	`\^`, `^`,
)

// Markdown converts an HTML fragment to Markdown. On a conversion failure
// the fragment is returned unchanged along with the error.
func Markdown(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	flattened, err := FlattenMath(fragment)
	if err != nil {
		return fragment, err
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdown, err := conv.ConvertString(flattened)
	if err != nil {
		return fragment, err
	}
	return unescaper.Replace(markdown), nil
}

// FlattenMath replaces every <math> element with a text node holding its
// linear form, "$...$" for inline and "$$...$$" for display="block".
func FlattenMath(fragment string) (string, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		n = replaceMath(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// replaceMath rewrites n's subtree in place and returns the node to render
// in n's position.
func replaceMath(n *html.Node) *html.Node {
	if isMath(n) {
		return &html.Node{Type: html.TextNode, Data: delimit(n, linearize(n))}
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if r := replaceMath(c); r != c {
			n.InsertBefore(r, c)
			n.RemoveChild(c)
		}
		c = next
	}
	return n
}

func isMath(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "math"
}

func delimit(n *html.Node, body string) string {
	for _, a := range n.Attr {
		if a.Key == "display" && a.Val == "block" {
			return "$$" + body + "$$"
		}
	}
	return "$" + body + "$"
}

func linearize(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	if n.Type != html.ElementNode {
		return ""
	}

	args := elementChildren(n)
	arg := func(i int) string {
		if i < len(args) {
			return linearize(args[i])
		}
		return ""
	}

	switch n.Data {
	case "msup":
		return arg(0) + "^" + group(arg(1))
	case "msub":
		return arg(0) + "_" + group(arg(1))
	case "msubsup":
		return arg(0) + "_" + group(arg(1)) + "^" + group(arg(2))
	case "mfrac":
		return group(arg(0)) + "/" + group(arg(1))
	case "msqrt":
		return "√" + group(joinChildren(n))
	case "mroot":
		return "√[" + arg(1) + "]" + group(arg(0))
	case "mover":
		return arg(0) + "^" + group(arg(1))
	case "munder":
		return arg(0) + "_" + group(arg(1))
	case "munderover":
		return arg(0) + "_" + group(arg(1)) + "^" + group(arg(2))
	default:
		return joinChildren(n)
	}
}

func joinChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(linearize(c))
	}
	return sb.String()
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// group parenthesises multi-rune operands.
func group(s string) string {
	if len([]rune(s)) <= 1 {
		return s
	}
	return "(" + s + ")"
}
