package documents

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const docxBody = "word/document.xml"

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func readDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		paragraphs, err := xmlParagraphs(f)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}
		return nonEmpty(strings.Join(paragraphs, "\n"))
	}

	return "", fmt.Errorf("open docx: %s is missing", docxBody)
}

func readPPTX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	type slide struct {
		n    int
		file *zip.File
	}

	var slides []slide
	for _, f := range zr.File {
		m := slidePart.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{n: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var sb strings.Builder
	hasText := false
	for i, s := range slides {
		paragraphs, err := xmlParagraphs(s.file)
		if err != nil {
			return "", fmt.Errorf("parse slide %d: %w", s.n, err)
		}

		fmt.Fprintf(&sb, "\n--- Slide %d ---\n", i+1)
		for _, p := range paragraphs {
			if strings.TrimSpace(p) == "" {
				continue
			}
			hasText = true
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}

	if !hasText {
		return "", ErrEmpty
	}
	return strings.TrimSpace(sb.String()), nil
}

// xmlParagraphs collects the text of every <p> element of an OOXML part. Runs are
// concatenated, tabs and breaks are kept. Tab stop definitions in paragraph properties are not text.
func xmlParagraphs(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
		inProps    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "pPr":
				inProps = true
			case "tab":
				if !inProps {
					current.WriteString("\t")
				}
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					paragraphs = append(paragraphs, current.String())
				}
				inPara = false
			case "t":
				inText = false
			case "pPr":
				inProps = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return nonEmpty(string(data))
}
