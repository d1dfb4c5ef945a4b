package preview

import (
	"strings"
	"testing"
)

const energyHTML = `<p>Energy is <math xmlns="http://www.w3.org/1998/Math/MathML" display="inline"><mi>E</mi><mo>=</mo><mi>m</mi><msup><mi>c</mi><mn>2</mn></msup></math>.</p>`

func TestFlattenMath(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "inline superscript",
			html: energyHTML,
			want: "<p>Energy is $E=mc^2$.</p>",
		},
		{
			name: "block fraction",
			html: `<math display="block"><mfrac><mrow><mi>a</mi><mo>+</mo><mi>b</mi></mrow><mn>2</mn></mfrac></math>`,
			want: "$$(a+b)/2$$",
		},
		{
			name: "square root and subscript",
			html: `<p><math display="inline"><msqrt><msub><mi>x</mi><mn>1</mn></msub></msqrt></math></p>`,
			want: "<p>$√(x_1)$</p>",
		},
		{
			name: "no math untouched",
			html: `<ul><li><b>bold</b></li></ul>`,
			want: `<ul><li><b>bold</b></li></ul>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlattenMath(tt.html)
			if err != nil {
				t.Fatalf("FlattenMath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FlattenMath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown("<h1>Notes</h1>" + energyHTML + "<ul><li><strong>mass</strong></li></ul>")
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	plain := strings.ReplaceAll(md, `\`, "")

	for _, want := range []string{"# Notes", "$E=mc^2$", "**mass**"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Markdown() = %q, missing %q", md, want)
		}
	}
}

func TestMarkdownEmpty(t *testing.T) {
	md, err := Markdown("  \n")
	if err != nil || md != "" {
		t.Errorf("Markdown(blank) = %q, %v", md, err)
	}
}
