package writer

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/insightdelivered/payment-summary-toolkit/internal/models"
)

// HTMLWriter renders the Markdown rendition of the report to a standalone
// HTML page.
type HTMLWriter struct {
	readable ReadableWriter
}

const htmlHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>OHIP Payment Summary</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; padding: 0 1em; }
h1, h2, h3 { color: #223; }
li { margin: 0.15em 0; }
</style>
</head>
<body>
`

const htmlFooter = "</body>\n</html>\n"

// Write renders the report and writes the HTML document.
func (w *HTMLWriter) Write(out io.Writer, rep *models.Report) error {
	var md bytes.Buffer
	if err := w.readable.WriteMarkdown(&md, rep); err != nil {
		return err
	}

	conv := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := conv.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	if _, err := io.WriteString(out, htmlHeader); err != nil {
		return err
	}
	if _, err := out.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(out, htmlFooter)
	return err
}

// WriteToFile writes the HTML document to a file at the given path.
func (w *HTMLWriter) WriteToFile(path string, rep *models.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()
	return w.Write(f, rep)
}
