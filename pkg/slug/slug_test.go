package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  ALL UPPER  ", "all-upper"},
		{"Kadın Giyim", "kadin-giyim"},
		{"Çocuk Ürünleri", "cocuk-urunleri"},
		{"Crème Brûlée!", "creme-brulee"},
		{"Straße", "strasse"},
		{"a -- b", "a-b"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_TruncatesLongNames(t *testing.T) {
	got := Generate(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(got), maxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestFromFilename(t *testing.T) {
	pattern := regexp.MustCompile(`^summer-dress-[0-9a-f]{8}$`)
	assert.Regexp(t, pattern, FromFilename("Summer Dress.JPG"))
	assert.Regexp(t, pattern, FromFilename(`C:\uploads\Summer Dress.png`))
	assert.Regexp(t, `^file-[0-9a-f]{8}$`, FromFilename(".png"))

	assert.NotEqual(t, FromFilename("a.png"), FromFilename("a.png"))
}
