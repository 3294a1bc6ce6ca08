package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadHTML_VisibleTextOnly(t *testing.T) {
	page := `<html><head><title>Terms</title><style>body{color:red}</style></head>
<body>
<script>var tracking = true;</script>
<h1>Terms of Service</h1>
<p>You must be 18 years or older to use this service.</p>
<noscript>Enable JavaScript</noscript>
</body></html>`

	doc, err := LoadHTML("https://example.com/terms", page)
	if err != nil {
		t.Fatalf("LoadHTML failed: %v", err)
	}

	text := doc.Text()
	if !strings.Contains(text, "Terms of Service") {
		t.Error("Expected heading text in document")
	}
	if !strings.Contains(text, "You must be 18 years or older") {
		t.Error("Expected paragraph text in document")
	}
	if strings.Contains(text, "tracking") || strings.Contains(text, "color:red") {
		t.Error("Script or style content leaked into visible text")
	}
	if strings.Contains(text, "Enable JavaScript") {
		t.Error("noscript content leaked into visible text")
	}
	if doc.Source() != "https://example.com/terms" {
		t.Errorf("Unexpected source: %q", doc.Source())
	}
}

func TestLoadFile_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.txt")
	content := "1. RENT. Tenant shall pay rent.\n2. TERM. Twelve months."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if doc.Text() != content {
		t.Errorf("Plain text must be loaded verbatim, got %q", doc.Text())
	}
	if doc.Source() != path {
		t.Errorf("Unexpected source: %q", doc.Source())
	}
}

func TestLoadFile_HTMLExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.html")
	if err := os.WriteFile(path, []byte("<p>Hello <b>world</b></p><script>x()</script>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if strings.Contains(doc.Text(), "x()") {
		t.Error("Script content leaked into visible text")
	}
	if !strings.Contains(doc.Text(), "Hello") || !strings.Contains(doc.Text(), "world") {
		t.Errorf("Expected visible text, got %q", doc.Text())
	}
}

func TestLoadFile_PDFRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("Expected an error for pdf input")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
