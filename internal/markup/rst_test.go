package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRSTEmpty(t *testing.T) {
	assert.Equal(t, "", ToRST("", "^"))
	assert.Equal(t, "", ToRST("  \n\n", "^"))
}

func TestToRSTHeadingsFollowMarkers(t *testing.T) {
	md := "## Setup\n\nSome text.\n\n### Details\n\nMore.\n\n#### Deep\n\n##### Deeper\n"

	got := ToRST(md, `^"'`)

	assert.Equal(t, "Setup\n^^^^^\n\nSome text.\n\nDetails\n\"\"\"\"\"\"\"\n\nMore.\n\nDeep\n''''\n\nDeeper\n''''''\n", got)
}

func TestToRSTHeadingWidthCountsRunes(t *testing.T) {
	got := ToRST("# Über\n", "~")
	assert.Equal(t, "Über\n~~~~\n", got)
}

func TestToRSTInline(t *testing.T) {
	md := "Use *this* and **that** with `code` via [the docs](https://example.org/docs).\n"

	got := ToRST(md, "")

	assert.Equal(t, "Use *this* and **that** with ``code`` via `the docs <https://example.org/docs>`__.\n", got)
}

func TestToRSTEscapesMarkupCharacters(t *testing.T) {
	got := ToRST("a | b\n", "")
	assert.Equal(t, "a \\| b\n", got)
}

func TestToRSTBareLinks(t *testing.T) {
	got := ToRST("See https://example.org for more.\n", "")
	assert.Equal(t, "See https://example.org for more.\n", got)
}

func TestToRSTCodeBlocks(t *testing.T) {
	md := "```bash\nsnakemake --executor foo\n```\n\n```\nplain\n```\n"

	got := ToRST(md, "")

	assert.Equal(t, ".. code-block:: bash\n\n   snakemake --executor foo\n\n::\n\n   plain\n", got)
}

func TestToRSTLists(t *testing.T) {
	got := ToRST("- one\n- two\n  - nested\n", "")
	assert.Equal(t, "- one\n- two\n\n  - nested\n", got)

	got = ToRST("3. third\n4. fourth\n", "")
	assert.Equal(t, "3. third\n4. fourth\n", got)
}

func TestToRSTTable(t *testing.T) {
	md := "| key | value |\n|-----|-------|\n| a   | 1     |\n"

	got := ToRST(md, "")

	assert.Equal(t, ".. list-table::\n   :header-rows: 1\n\n   * - key\n     - value\n   * - a\n     - 1\n", got)
}

func TestToRSTBlockquote(t *testing.T) {
	got := ToRST("> quoted\n", "")
	assert.Equal(t, "    quoted\n", got)
}
