package extract

import (
	"context"
	"testing"
)

func TestTextFromBytesPlainText(t *testing.T) {
	text, err := TextFromBytes(context.Background(), []byte("hello resume"), "text/plain", "resume.txt")
	if err != nil {
		t.Fatalf("TextFromBytes: %v", err)
	}
	if text != "hello resume" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestNormalizeMimeTypeFallsBackToExtension(t *testing.T) {
	cases := []struct {
		mime, name, want string
	}{
		{"application/octet-stream", "resume.pdf", mimePDF},
		{"", "resume.docx", mimeDOCX},
		{"application/pdf; charset=binary", "whatever", mimePDF},
		{"text/plain", "resume.txt", "text/plain"},
	}
	for _, tc := range cases {
		if got := normalizeMimeType(tc.mime, tc.name); got != tc.want {
			t.Errorf("normalizeMimeType(%q, %q) = %q, want %q", tc.mime, tc.name, got, tc.want)
		}
	}
}

func TestStripDocxXML(t *testing.T) {
	content := `<w:document><w:p><w:r><w:t>Zhang San</w:t></w:r></w:p><w:p><w:r><w:t>python java</w:t></w:r></w:p></w:document>`
	got := stripDocxXML(content)
	want := "Zhang San\npython java"
	if got != want {
		t.Fatalf("stripDocxXML = %q, want %q", got, want)
	}
}
