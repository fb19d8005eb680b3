package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/mj1618/uisync/internal/model"
)

func TestCell(t *testing.T) {
	if got := cell("abc", 5); got != "abc  " {
		t.Errorf("expected padding, got %q", got)
	}
	long := cell("a very long piece of text", 10)
	if runewidth.StringWidth(long) != 10 || !strings.HasSuffix(long, "...") {
		t.Errorf("expected truncation to 10 columns, got %q", long)
	}
	wide := cell("日本語のテキストです", 8)
	if runewidth.StringWidth(wide) != 8 {
		t.Errorf("expected wide text to fit 8 columns, got %q (%d)", wide, runewidth.StringWidth(wide))
	}
	if got := cell("a\nb", 3); got != "a b" {
		t.Errorf("expected newline folded, got %q", got)
	}
}

func TestWriteNodeTable_Alignment(t *testing.T) {
	var buf bytes.Buffer
	nodes := []model.FlatNode{
		{ID: "a", Type: "TextView", Text: "こんにちは", Shown: true},
		{ID: "b", Type: "TextView", Text: "hello", Shown: true},
	}
	if err := WriteNodeTable(&buf, nodes); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	w := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		if runewidth.StringWidth(l) != w {
			t.Errorf("misaligned row %q: width %d, header %d", l, runewidth.StringWidth(l), w)
		}
	}
}
