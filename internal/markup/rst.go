// Package markup converts Markdown documents into reStructuredText.
package markup

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultMarkers is the heading adornment sequence used when none is given
const DefaultMarkers = `=-^"'~`

var parser = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Table)).Parser()

// ToRST converts md into reStructuredText. The shallowest heading level of
// md is adorned with the first rune of markers, the next one with the
// second and so on; levels beyond the sequence reuse its last rune.
func ToRST(md string, markers string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if markers == "" {
		markers = DefaultMarkers
	}

	src := []byte(md)
	doc := parser.Parse(text.NewReader(src))

	c := &converter{src: src, markers: []rune(markers), levels: headingLevels(doc)}
	out := c.blocks(doc)
	if out == "" {
		return ""
	}
	return out + "\n"
}

// headingLevels maps every heading level present in doc to its rank
func headingLevels(doc ast.Node) map[int]int {
	seen := map[int]bool{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			seen[h.Level] = true
		}
		return ast.WalkContinue, nil
	})

	levels := make([]int, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	ranks := make(map[int]int, len(levels))
	for i, l := range levels {
		ranks[l] = i
	}
	return ranks
}

type converter struct {
	src     []byte
	markers []rune
	levels  map[int]int
}

func (c *converter) marker(level int) rune {
	rank := c.levels[level]
	if rank >= len(c.markers) {
		rank = len(c.markers) - 1
	}
	return c.markers[rank]
}

// blocks renders the block children of parent separated by blank lines
func (c *converter) blocks(parent ast.Node) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := c.block(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c *converter) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Heading:
		title := strings.ReplaceAll(c.inlines(n), "\n", " ")
		if title == "" {
			return ""
		}
		width := utf8.RuneCountInString(title)
		return title + "\n" + strings.Repeat(string(c.marker(n.Level)), width)

	case *ast.Paragraph, *ast.TextBlock:
		return c.inlines(n)

	case *ast.FencedCodeBlock:
		directive := "::"
		if lang := string(n.Language(c.src)); lang != "" {
			directive = ".. code-block:: " + lang
		}
		return directive + "\n\n" + indent(c.lines(n), "   ")

	case *ast.CodeBlock:
		return "::\n\n" + indent(c.lines(n), "   ")

	case *ast.HTMLBlock:
		body := c.lines(n)
		if n.HasClosure() {
			body += string(n.ClosureLine.Value(c.src))
		}
		return ".. raw:: html\n\n" + indent(strings.TrimRight(body, "\n"), "   ")

	case *ast.Blockquote:
		return indent(c.blocks(n), "    ")

	case *ast.ThematicBreak:
		return "----"

	case *ast.List:
		return c.list(n)

	case *extast.Table:
		return c.table(n)
	}

	// unknown containers degrade to their content
	return c.blocks(n)
}

func (c *converter) list(l *ast.List) string {
	var items []string
	number := l.Start
	for n := l.FirstChild(); n != nil; n = n.NextSibling() {
		bullet := "- "
		if l.IsOrdered() {
			bullet = fmt.Sprintf("%d. ", number)
			number++
		}

		body := c.blocks(n)
		pad := strings.Repeat(" ", len(bullet))
		items = append(items, bullet+strings.TrimPrefix(indent(body, pad), pad))
	}

	sep := "\n\n"
	if l.IsTight {
		sep = "\n"
	}
	return strings.Join(items, sep)
}

func (c *converter) table(t *extast.Table) string {
	var b strings.Builder
	b.WriteString(".. list-table::\n")

	header := false
	var rows []string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		if _, ok := row.(*extast.TableHeader); ok {
			header = true
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.ReplaceAll(c.inlines(cell), "\n", " "))
		}
		if len(cells) == 0 {
			continue
		}
		r := "   * - " + cells[0]
		for _, cell := range cells[1:] {
			r += "\n     - " + cell
		}
		rows = append(rows, r)
	}

	if header {
		b.WriteString("   :header-rows: 1\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(rows, "\n"))
	return b.String()
}

// inlines renders the inline children of n
func (c *converter) inlines(n ast.Node) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		b.WriteString(c.inline(child))
	}
	return strings.TrimSpace(b.String())
}

func (c *converter) inline(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Text:
		s := escape(string(n.Segment.Value(c.src)))
		if n.SoftLineBreak() || n.HardLineBreak() {
			s += "\n"
		}
		return s

	case *ast.String:
		return escape(string(n.Value))

	case *ast.Emphasis:
		inner := c.inlines(n)
		if inner == "" {
			return ""
		}
		mark := strings.Repeat("*", min(n.Level, 2))
		return mark + inner + mark

	case *ast.CodeSpan:
		return "``" + c.raw(n) + "``"

	case *ast.Link:
		label := c.inlines(n)
		dest := string(n.Destination)
		if label == "" || label == dest {
			return dest
		}
		return fmt.Sprintf("`%s <%s>`__", label, dest)

	case *ast.AutoLink:
		return string(n.URL(c.src))

	case *ast.Image:
		return fmt.Sprintf("`%s <%s>`__", c.raw(n), n.Destination)

	case *ast.RawHTML:
		return ""
	}
	return c.inlines(n)
}

// raw concatenates the unescaped text below n
func (c *converter) raw(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := child.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(c.src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (c *converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimRight(b.String(), "\n")
}

var escaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "`", "\\`", "|", `\|`)

func escape(s string) string {
	return escaper.Replace(s)
}

// indent prefixes every non-empty line of s
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
