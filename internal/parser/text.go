package parser

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter breaks a non-PDF source into page texts.
type Splitter interface {
	Pages(data []byte) ([]string, error)
}

// TextParser handles plain text files. A form feed starts a new page.
type TextParser struct{}

func (p *TextParser) Pages(data []byte) ([]string, error) {
	var pages []string
	for _, raw := range bytes.Split(data, []byte{'\f'}) {
		page, err := joinLines(raw)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	// A trailing form feed does not open an empty last page.
	if len(pages) > 1 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	if len(pages) == 1 && pages[0] == "" {
		return nil, nil
	}
	return pages, nil
}

// joinLines normalizes line endings and drops runs of blank lines.
func joinLines(raw []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// pager accumulates blocks of text and cuts a new page at each
// top-level heading.
type pager struct {
	pages   []string
	current strings.Builder
}

func (pg *pager) heading(level int, title string) {
	if level == 1 {
		pg.flush()
	}
	pg.block(title)
}

func (pg *pager) block(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if pg.current.Len() > 0 {
		pg.current.WriteString("\n\n")
	}
	pg.current.WriteString(text)
}

func (pg *pager) flush() {
	if pg.current.Len() > 0 {
		pg.pages = append(pg.pages, pg.current.String())
		pg.current.Reset()
	}
}

func (pg *pager) result() []string {
	pg.flush()
	return pg.pages
}
