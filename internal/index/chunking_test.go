package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "empty",
			doc:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			doc:  " \n\n\t ",
			want: nil,
		},
		{
			name: "drops short pieces",
			doc:  "Zwroty przyjmujemy do 14 dni.\n\nkrótko\n\nKod rabatowy: ZIMA2024",
			want: []string{"Zwroty przyjmujemy do 14 dni.", "Kod rabatowy: ZIMA2024"},
		},
		{
			name: "exactly ten runes kept",
			doc:  "0123456789\n\n012345678",
			want: []string{"0123456789"},
		},
		{
			name: "counts runes not bytes",
			doc:  "żółćżółćżó\n\nżółćżółć",
			want: []string{"żółćżółćżó"},
		},
		{
			name: "crlf and whitespace separator lines",
			doc:  "Pierwszy akapit tekstu\r\n \r\nDrugi akapit tekstu\n\t\nTrzeci akapit tekstu",
			want: []string{"Pierwszy akapit tekstu", "Drugi akapit tekstu", "Trzeci akapit tekstu"},
		},
		{
			name: "single newline stays inside a chunk",
			doc:  "linia pierwsza\nlinia druga",
			want: []string{"linia pierwsza\nlinia druga"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.doc, MinChunkLength)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitParagraphs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
