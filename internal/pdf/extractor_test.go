package pdf

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/file-intake/internal/domain"
	"go.uber.org/zap"
)

// minimalPDF builds a single page document with one line of text.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := sb.Len()
	fmt.Fprintf(&sb, "xref\n0 %d\n", len(objects)+1)
	sb.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&sb, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&sb, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return []byte(sb.String())
}

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(zap.NewNop())

	text, err := e.Extract(minimalPDF("Test PDF Content"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "Test PDF Content") {
		t.Errorf("text = %q, want page content", text)
	}
	if !strings.HasSuffix(text, "\n\n") {
		t.Errorf("each page should end with a blank line, got %q", text)
	}
}

func TestExtractor_Errors(t *testing.T) {
	e := NewExtractor(zap.NewNop())

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: domain.ErrEmptyFile},
		{name: "not a pdf", data: []byte("this is plainly not a pdf document"), wantErr: domain.ErrUnreadablePDF},
		{name: "truncated pdf", data: minimalPDF("cut")[:40], wantErr: domain.ErrUnreadablePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
