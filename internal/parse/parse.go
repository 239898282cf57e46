package parse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

var (
	ErrEmptyHTML        = errors.New("empty html")
	ErrSelectorNotFound = errors.New("selector not found")
	ErrNoTable          = errors.New("no table found")
)

func NewDocument(htmlText string) (*goquery.Document, error) {
	if strings.TrimSpace(htmlText) == "" {
		return nil, ErrEmptyHTML
	}
	return goquery.NewDocumentFromReader(strings.NewReader(htmlText))
}

// ReadDocument decodes r to UTF-8 using contentType, a <meta> charset
// declaration or content sniffing, then parses it.
func ReadDocument(r io.Reader, contentType string) (*goquery.Document, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}

func OpenFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	doc, err := ReadDocument(f, "")
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func ExtractBySelector(doc *goquery.Document, selector string) (*goquery.Document, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	if strings.TrimSpace(selector) == "" {
		return doc, nil
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
	}
	node := sel.Get(0)
	if node == nil {
		return nil, fmt.Errorf("selector node missing: %s", selector)
	}
	return goquery.NewDocumentFromNode(node), nil
}

func RemoveSelectors(doc *goquery.Document, selector string) {
	if doc == nil || strings.TrimSpace(selector) == "" {
		return
	}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})
}
