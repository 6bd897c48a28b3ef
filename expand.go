package cpregex

import (
	"strconv"
	"strings"
	"sync"

	"github.com/coregx/cpregex/internal/backend"
	"github.com/coregx/cpregex/internal/conv"
)

// backrefPattern matches one template escape: \N or \NN, \g<ref>, or \\.
const backrefPattern = `\\(?:([0-9]{1,2})|g<([^>]*)>|(\\))`

// backrefs is compiled on first use. It goes straight to the backend so that
// loading the package does not run Init ahead of the host.
var backrefs = sync.OnceValue(func() *backend.Program {
	prog, err := backend.Compile(backrefPattern, DefaultConfig().Engine)
	if err != nil {
		panic("cpregex: compiling template syntax: " + err.Error())
	}
	return prog
})

// Expand returns template with every backreference replaced by the text of
// the group it names:
//
//	\1 .. \99    group by number (\0 is the whole match)
//	\g<N>        group by number, useful before a literal digit: \g<1>0
//	\g<name>     group by name
//	\\           a literal backslash
//
// Any other backslash sequence is copied unchanged. Groups that did not
// participate expand to "". A reference to a group the pattern does not have
// fails with *IndexError.
//
// Example:
//
//	re := cpregex.MustCompile(`(?P<user>\w+)@(\w+)`)
//	m, _ := re.Search("mail bob@example now")
//	s, _ := m.Expand(`\2 has \g<user>`) // "example has bob"
func (m *Match) Expand(template string) (string, error) {
	prog := backrefs()
	buf := conv.Bytes(template)

	var sb strings.Builder
	last := 0
	for last < len(template) {
		loc, err := prog.Exec(buf, last, false, 0)
		if err != nil {
			return "", &ExecutionError{Pattern: backrefPattern, Err: err}
		}
		if loc == nil {
			break
		}
		if sb.Len() == 0 {
			sb.Grow(len(template))
		}
		sb.WriteString(template[last:loc[0]])
		last = loc[1]

		var text string
		switch {
		case loc[2] >= 0:
			n, _ := strconv.Atoi(template[loc[2]:loc[3]])
			text, err = m.Group(n)
		case loc[4] >= 0:
			text, err = m.groupRef(template[loc[4]:loc[5]])
		default:
			text = `\`
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	if last == 0 {
		return template, nil
	}
	sb.WriteString(template[last:])
	return sb.String(), nil
}

// groupRef resolves the inside of \g<...>: a decimal group number or a name.
func (m *Match) groupRef(ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		return m.Group(n)
	}
	if ref == "" {
		return "", &IndexError{Group: -1, Name: "<empty>", NumGroups: m.NumGroups()}
	}
	return m.GroupByName(ref)
}
