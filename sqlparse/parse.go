package sqlparse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ParseError reports malformed definition text together with the offending
// fragment and, when known, the metadata file it came from.
type ParseError struct {
	File   string
	Near   string
	Detail string
}

func (e *ParseError) Error() string {
	msg := e.Detail
	if e.Near != "" {
		msg = fmt.Sprintf("%s near %q", msg, e.Near)
	}
	if e.File != "" {
		msg = fmt.Sprintf("cannot parse definition from metadata file %s: %s", e.File, msg)
	}
	return msg
}

var (
	headRe   = regexp.MustCompile(`(?is)^\s*ATTACH\s+(TABLE|DICTIONARY)\s+(\w+)\s*\(`)
	identRe  = regexp.MustCompile(`^\w+$`)
	sourceRe = regexp.MustCompile(`(?i)^\s*SOURCE\s*\(`)
)

// Clause keywords are matched at the top nesting level of the tail. A match
// whose body would be empty is folded back into the preceding clause body,
// so a trailing identifier may share a name with a keyword; a keyword-named
// identifier followed by more text stays reserved.
var tableClauses = []struct {
	name string
	re   *regexp.Regexp
}{
	{"ENGINE", regexp.MustCompile(`(?i)\bENGINE\s*=`)},
	{"ORDER BY", regexp.MustCompile(`(?i)\bORDER\s+BY\b`)},
	{"PRIMARY KEY", regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)},
	{"TTL", regexp.MustCompile(`(?i)\bTTL\b`)},
	{"SETTINGS", regexp.MustCompile(`(?i)\bSETTINGS\b`)},
}

// Parse turns definition text into a Descriptor. Errors are always of type
// *ParseError so the caller can attach the metadata file name.
func Parse(text string) (*Descriptor, error) {
	m := headRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, &ParseError{Near: snippet(text), Detail: "expected ATTACH TABLE or ATTACH DICTIONARY"}
	}
	kind := strings.ToUpper(text[m[2]:m[3]])
	name := text[m[4]:m[5]]

	inner, rest, ok := balanced(text, m[1]-1)
	if !ok {
		return nil, &ParseError{Near: snippet(text[m[1]-1:]), Detail: "unbalanced parenthesis in definition list"}
	}

	d := &Descriptor{Kind: KindTable, Name: name}
	if kind == "DICTIONARY" {
		d.Kind = KindDictionary
	}

	if err := parseDefs(d, inner); err != nil {
		return nil, err
	}

	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ";"))
	if d.Kind == KindDictionary {
		if err := parseDictionaryTail(d, rest); err != nil {
			return nil, err
		}
	} else if err := parseTableTail(d, rest); err != nil {
		return nil, err
	}
	return d, nil
}

// parseDefs consumes the parenthesized definition list: columns, secondary
// indices and constraints, comma separated at the top nesting level.
func parseDefs(d *Descriptor, inner string) error {
	for _, def := range splitTopLevel(inner, ',') {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		fields := strings.Fields(def)
		switch strings.ToUpper(fields[0]) {
		case "INDEX":
			if len(fields) < 3 {
				return &ParseError{Near: def, Detail: "invalid index definition"}
			}
			d.Indices = append(d.Indices, Index{Name: fields[1], Expr: strings.Join(fields[2:], " ")})
		case "CONSTRAINT":
			if len(fields) < 4 || strings.ToUpper(fields[2]) != "CHECK" {
				return &ParseError{Near: def, Detail: "invalid constraint definition"}
			}
			d.Constraints = append(d.Constraints, Constraint{Name: fields[1], Expr: strings.Join(fields[3:], " ")})
		default:
			if len(fields) < 2 {
				return &ParseError{Near: def, Detail: "invalid column definition"}
			}
			d.Columns = append(d.Columns, Column{Name: fields[0], Type: strings.Join(fields[1:], " ")})
		}
	}
	if len(d.Columns) == 0 {
		return &ParseError{Near: d.Name, Detail: "empty list of columns"}
	}
	return nil
}

func parseTableTail(d *Descriptor, tail string) error {
	type clause struct {
		name      string
		start     int
		bodyStart int
	}
	var clauses []clause
	for _, cs := range tableClauses {
		for _, loc := range cs.re.FindAllStringIndex(tail, -1) {
			if depthAt(tail, loc[0]) != 0 {
				continue
			}
			clauses = append(clauses, clause{cs.name, loc[0], loc[1]})
		}
	}
	sort.Slice(clauses, func(i, j int) bool { return clauses[i].start < clauses[j].start })

	if len(clauses) == 0 {
		return &ParseError{Near: snippet(tail), Detail: "missing ENGINE clause"}
	}
	if lead := strings.TrimSpace(tail[:clauses[0].start]); lead != "" {
		return &ParseError{Near: snippet(lead), Detail: "unexpected text before storage clauses"}
	}

	// Fold back matches with an empty body: a keyword right before another
	// keyword or the end of the text is a term of the preceding clause, not
	// a clause of its own (a column named ttl can end an ORDER BY key).
	kept := clauses[:0]
	end := len(tail)
	keep := make([]bool, len(clauses))
	for i := len(clauses) - 1; i >= 0; i-- {
		if i > 0 && strings.TrimSpace(tail[clauses[i].bodyStart:end]) == "" {
			continue
		}
		keep[i] = true
		end = clauses[i].start
	}
	for i, c := range clauses {
		if keep[i] {
			kept = append(kept, c)
		}
	}
	clauses = kept

	seen := make(map[string]bool)
	for i, c := range clauses {
		end := len(tail)
		if i+1 < len(clauses) {
			end = clauses[i+1].start
		}
		body := strings.TrimSpace(tail[c.bodyStart:end])
		if seen[c.name] {
			return &ParseError{Near: body, Detail: "duplicate " + c.name + " clause"}
		}
		seen[c.name] = true
		if body == "" {
			return &ParseError{Near: snippet(tail[c.start:]), Detail: "empty " + c.name + " clause"}
		}

		switch c.name {
		case "ENGINE":
			if !identRe.MatchString(body) {
				return &ParseError{Near: body, Detail: "invalid engine name"}
			}
			d.Engine = body
		case "ORDER BY":
			d.OrderBy = body
		case "PRIMARY KEY":
			d.PrimaryKey = body
		case "TTL":
			d.TTL = body
		case "SETTINGS":
			settings, err := parseSettings(body)
			if err != nil {
				return err
			}
			d.Settings = settings
		}
	}
	if d.Engine == "" {
		return &ParseError{Near: d.Name, Detail: "missing ENGINE clause"}
	}
	return nil
}

func parseSettings(body string) ([]Setting, error) {
	var out []Setting
	for _, kv := range splitTopLevel(body, ',') {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, &ParseError{Near: strings.TrimSpace(kv), Detail: "invalid setting, expected key = value"}
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			return nil, &ParseError{Near: strings.TrimSpace(kv), Detail: "invalid setting, expected key = value"}
		}
		out = append(out, Setting{Key: key, Value: value})
	}
	return out, nil
}

func parseDictionaryTail(d *Descriptor, tail string) error {
	if tail == "" {
		return nil
	}
	m := sourceRe.FindStringIndex(tail)
	if m == nil {
		return &ParseError{Near: snippet(tail), Detail: "expected SOURCE clause"}
	}
	inner, rest, ok := balanced(tail, m[1]-1)
	if !ok {
		return &ParseError{Near: snippet(tail), Detail: "unbalanced parenthesis in SOURCE clause"}
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		return &ParseError{Near: snippet(rest), Detail: "unexpected text after SOURCE clause"}
	}
	d.Source = strings.TrimSpace(inner)
	return nil
}

// balanced returns the content between the paren at open and its match,
// together with the remainder of the string. Single-quoted literals are
// skipped.
func balanced(s string, open int) (inner, rest string, ok bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'':
			i = skipQuoted(s, i)
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			i = skipQuoted(s, i)
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// depthAt reports the paren nesting depth just before index at.
func depthAt(s string, at int) int {
	depth := 0
	for i := 0; i < at && i < len(s); i++ {
		switch s[i] {
		case '\'':
			i = skipQuoted(s, i)
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

func skipQuoted(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		if s[i] == '\'' {
			return i
		}
	}
	return len(s)
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 32 {
		return s[:32]
	}
	return s
}
