package tokenize

import (
	"strings"
	"sync"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/coregx/cpregex"
)

// Kinds reported by Detect. A grammar directory holds one <kind>.yaml per
// kind it supports.
const (
	KindShell    = "shell"
	KindJSON     = "json"
	KindLog      = "log"
	KindTOML     = "toml"
	KindMarkdown = "markdown"
	KindYAML     = "yaml"
	KindHTML     = "html"
	KindText     = "text"
)

// HeadBytes is how much of the input Detect examines.
const HeadBytes = 2048

var htmlMarkers = []string{"<!doctype html", "<html", "<head>", "<body>", "<div", "<span"}

// detector holds the line heuristics. Match anchors at the start of a line
// like the checks it implements; Search looks anywhere.
type detector struct {
	shebang   *cpregex.Pattern
	logStamp  *cpregex.Pattern
	logLevel  *cpregex.Pattern
	tomlTable *cpregex.Pattern
	tomlKey   *cpregex.Pattern
	mdHeader  *cpregex.Pattern
	mdList    *cpregex.Pattern
	mdLink    *cpregex.Pattern
	yamlKey   *cpregex.Pattern
	yamlItem  *cpregex.Pattern
}

var loadDetector = sync.OnceValues(func() (*detector, error) {
	var d detector
	for _, p := range []struct {
		dst **cpregex.Pattern
		src string
	}{
		{&d.shebang, `(?i)#!.*(?:sh|fish)`},
		{&d.logStamp, `\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}|\[\d{4}-\d{2}-\d{2}|\d{4}/\d{2}/\d{2}`},
		{&d.logLevel, `\[(?:INFO|ERROR|WARN|DEBUG)\]|\s(?:INFO|ERROR|WARN|DEBUG)\s| (?:INFO|ERROR|WARN|DEBUG):`},
		{&d.tomlTable, `\[\[?[^\]]+\]\]?$`},
		{&d.tomlKey, `[A-Za-z0-9_\-]+(?:\.?[A-Za-z0-9_\-]+)*\s*=`},
		{&d.mdHeader, `#{1,6}\s+\S`},
		{&d.mdList, `[-*+]\s+`},
		{&d.mdLink, `\[.+?\]\(.+?\)`},
		{&d.yamlKey, `[A-Za-z0-9_\-]+\s*:`},
		{&d.yamlItem, `-\s+`},
	} {
		re, err := cpregex.Compile(p.src)
		if err != nil {
			return nil, errors.Wrapf(err, "detector pattern %q", p.src)
		}
		*p.dst = re
	}
	return &d, nil
})

// Detect guesses what kind of text data holds from its first HeadBytes
// bytes. It returns "" for empty input and for input that is not UTF-8.
// JSON is only reported when all of data parses, so pass the whole document
// when it is at hand.
func Detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	head := window(data)
	if !utf8.Valid(head) {
		return "", nil
	}

	d, err := loadDetector()
	if err != nil {
		return "", err
	}
	text := string(head)
	lines := splitLines(text)
	return d.detect(data, text, lines)
}

// window returns up to HeadBytes of data without splitting a codepoint.
func window(data []byte) []byte {
	if len(data) <= HeadBytes {
		return data
	}
	head := data[:HeadBytes]
	for i := len(head) - 1; i >= 0 && i >= len(head)-utf8.UTFMax; i-- {
		if utf8.RuneStart(head[i]) {
			if !utf8.FullRune(head[i:]) {
				head = head[:i]
			}
			break
		}
	}
	return head
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (d *detector) detect(data []byte, text string, lines []string) (string, error) {
	for _, c := range []struct {
		kind  string
		check func(data []byte, text string, lines []string) (bool, error)
	}{
		{KindShell, d.isShell},
		{KindJSON, d.isJSON},
		{KindLog, d.isLog},
		{KindTOML, d.isTOML},
		{KindMarkdown, d.isMarkdown},
		{KindYAML, d.isYAML},
	} {
		ok, err := c.check(data, text, lines)
		if err != nil {
			return "", err
		}
		if ok {
			return c.kind, nil
		}
	}

	lower := strings.ToLower(text)
	for _, marker := range htmlMarkers {
		if strings.Contains(lower, marker) {
			return KindHTML, nil
		}
	}
	return KindText, nil
}

func (d *detector) isShell(_ []byte, text string, lines []string) (bool, error) {
	if !strings.HasPrefix(text, "#!") {
		return false, nil
	}
	return matches(d.shebang, lines[0])
}

func (d *detector) isJSON(data []byte, text string, _ []string) (bool, error) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return false, nil
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Valid(data), nil
}

func (d *detector) isLog(_ []byte, text string, lines []string) (bool, error) {
	if len(lines) > 0 {
		ok, err := matches(d.logStamp, lines[0])
		if ok || err != nil {
			return ok, err
		}
	}
	return found(d.logLevel, text)
}

// isTOML scores table headers above key assignments. Short inputs need less
// evidence.
func (d *detector) isTOML(_ []byte, _ string, lines []string) (bool, error) {
	score := 0
	for _, line := range firstLines(lines, 50) {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		table, err := matches(d.tomlTable, s)
		if err != nil {
			return false, err
		}
		if table {
			score += 3
		} else if key, err := matches(d.tomlKey, s); err != nil {
			return false, err
		} else if key {
			score++
		}
		if strings.Contains(line, `"""`) || strings.Contains(line, `'''`) {
			score++
		}
	}
	return score >= 2 || (score >= 1 && len(lines) < 5), nil
}

// isMarkdown gives way to YAML as soon as a line looks like a key.
func (d *detector) isMarkdown(_ []byte, _ string, lines []string) (bool, error) {
	score := 0
	for _, line := range firstLines(lines, 30) {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if key, err := matches(d.yamlKey, s); err != nil || key {
			return false, err
		}

		header, err := matches(d.mdHeader, s)
		if err != nil {
			return false, err
		}
		list, err := matches(d.mdList, s)
		if err != nil {
			return false, err
		}
		link, err := found(d.mdLink, line)
		if err != nil {
			return false, err
		}
		if header {
			score += 2
		}
		if strings.HasPrefix(s, "```") {
			score += 2
		}
		if list {
			score++
		}
		if strings.HasPrefix(s, ">") {
			score++
		}
		if link {
			score++
		}
	}
	return score >= 2 || (score >= 1 && len(lines) < 5), nil
}

func (d *detector) isYAML(_ []byte, text string, lines []string) (bool, error) {
	score := 0
	if strings.HasPrefix(text, "---") {
		score += 2
	}
	for _, line := range firstLines(lines, 50) {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		key, err := matches(d.yamlKey, s)
		if err != nil {
			return false, err
		}
		item, err := matches(d.yamlItem, s)
		if err != nil {
			return false, err
		}
		if key {
			score++
		}
		if item {
			score++
		}
		if s == "..." {
			score++
		}
		if score >= 2 || (score >= 1 && len(lines) < 5) {
			return true, nil
		}
	}
	return false, nil
}

func firstLines(lines []string, n int) []string {
	return lines[:min(n, len(lines))]
}

func matches(re *cpregex.Pattern, s string) (bool, error) {
	m, err := re.Match(s)
	return m != nil, err
}

func found(re *cpregex.Pattern, s string) (bool, error) {
	m, err := re.Search(s)
	return m != nil, err
}
