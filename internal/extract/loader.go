package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/openclause/clauseguard/internal/model"
)

// LoadFile reads a contract from disk and builds a Document. HTML files are
// reduced to their visible text; anything else is treated as plain text.
// PDF extraction is out of scope; convert to text first.
func LoadFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return LoadHTML(path, string(data))
	case ".pdf":
		return nil, fmt.Errorf("pdf input is not supported: %s", path)
	default:
		return model.NewDocument(path, string(data)), nil
	}
}

// LoadHTML builds a Document from the visible text of an HTML page.
func LoadHTML(source, content string) (*model.Document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return model.NewDocument(source, visibleText(root)), nil
}

// visibleText collects text nodes from the DOM, skipping script/style tags.
// Text nodes are joined with newlines so resolved line numbers stay useful.
func visibleText(root *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)
	return buf.String()
}
