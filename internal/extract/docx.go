package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	defaultDocxBodyPath = "word/document.xml"
	ooxmlContentTypes   = "[Content_Types].xml"
	docxBodyContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// runTextRe matches a single <w:t> text node, attributes included, so runs
// carrying xml:space="preserve" or revision ids are not lost.
var runTextRe = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// bodyOverrideRes match the Override entry that names the main document
// part, in either attribute order.
var bodyOverrideRes = []*regexp.Regexp{
	regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxBodyContentType) + `"`),
	regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxBodyContentType) + `"[^>]+PartName="([^"]+)"`),
}

// docxText decodes .docx bytes. A DOCX file is a zip whose main body lives
// at the part declared in [Content_Types].xml, normally word/document.xml.
// Text is collected from every <w:t> node and joined with spaces.
func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract docx: not a zip: %w", err)
	}

	bodyPath := docxBodyPath(zr)
	body, err := readZipFile(zr, bodyPath)
	if err != nil {
		return "", fmt.Errorf("extract docx: %w", err)
	}

	matches := runTextRe.FindAllStringSubmatch(string(body), -1)
	var b strings.Builder
	for _, m := range matches {
		if t := strings.TrimSpace(m[1]); t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
	}
	return b.String(), nil
}

// docxBodyPath resolves the main document part from [Content_Types].xml,
// falling back to the conventional path when the manifest is absent or odd.
func docxBodyPath(zr *zip.Reader) string {
	manifest, err := readZipFile(zr, ooxmlContentTypes)
	if err != nil {
		return defaultDocxBodyPath
	}
	for _, re := range bodyOverrideRes {
		if m := re.FindSubmatch(manifest); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return defaultDocxBodyPath
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
