package tokenize

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coregx/cpregex"
)

// DefaultScope is given to text no rule matches when the grammar names none.
const DefaultScope = "text"

// Grammar is an ordered list of rules. Rules are tried together on each
// position of a line; the match starting leftmost wins and ties go to the
// rule listed first.
type Grammar struct {
	Name         string `yaml:"name"`
	DefaultScope string `yaml:"default_scope"`
	Rules        []Rule `yaml:"rules"`
}

// Rule assigns Scope to the text matched by Match. Captures optionally gives
// capture groups of Match scopes of their own.
type Rule struct {
	Scope    string
	Match    string
	Captures map[int]string
}

// UnmarshalYAML decodes a rule, insisting that match is a YAML string.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Scope    string         `yaml:"scope"`
		Match    yaml.Node      `yaml:"match"`
		Captures map[int]string `yaml:"captures"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Match.Kind != yaml.ScalarNode || raw.Match.Tag != "!!str" {
		return &cpregex.ArgumentError{
			Arg: "rule match",
			Msg: fmt.Sprintf("line %d: want a string, got %s", value.Line, describeNode(&raw.Match)),
		}
	}
	r.Scope = raw.Scope
	r.Match = raw.Match.Value
	r.Captures = raw.Captures
	return nil
}

func describeNode(n *yaml.Node) string {
	switch n.Kind {
	case 0:
		return "nothing"
	case yaml.ScalarNode:
		return n.Tag
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	default:
		return "an alias"
	}
}

// Validate checks the grammar for problems the regex compiler cannot see.
func (g *Grammar) Validate() error {
	if g.Name == "" {
		return errors.New("grammar name must not be empty")
	}
	for i, r := range g.Rules {
		if r.Scope == "" {
			return errors.Errorf("rule %d: scope must not be empty", i)
		}
		for _, n := range r.captureGroups() {
			if n < 1 {
				return errors.Errorf("rule %d: capture %d: groups start at 1", i, n)
			}
		}
	}
	return nil
}

// captureGroups returns the group numbers r.Captures names, in order.
func (r Rule) captureGroups() []int {
	groups := make([]int, 0, len(r.Captures))
	for n := range r.Captures {
		groups = append(groups, n)
	}
	sort.Ints(groups)
	return groups
}

// Patterns returns the match expressions in rule order.
func (g *Grammar) Patterns() []string {
	out := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		out[i] = r.Match
	}
	return out
}

func (g *Grammar) defaultScope() string {
	if g.DefaultScope == "" {
		return DefaultScope
	}
	return g.DefaultScope
}

// Parse decodes and validates a YAML grammar. Unknown fields are rejected.
func Parse(content []byte) (*Grammar, error) {
	return decode(bytes.NewReader(content))
}

// Load reads a YAML grammar from a file.
func Load(filename string) (*Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening grammar")
	}
	defer func() { _ = f.Close() }()

	g, err := decode(f)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return g, nil
}

func decode(r io.Reader) (*Grammar, error) {
	var g Grammar
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&g); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty grammar")
		}
		return nil, errors.Wrap(err, "decoding grammar")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}
