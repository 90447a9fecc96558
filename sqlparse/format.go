package sqlparse

import (
	"fmt"
	"strings"
)

// Format renders a descriptor back to definition text. The rendering is
// canonical rather than byte-identical to the parsed input, but always
// re-parses to an equivalent descriptor.
func Format(d *Descriptor) string {
	var b strings.Builder
	if d.Kind == KindDictionary {
		b.WriteString("ATTACH DICTIONARY ")
	} else {
		b.WriteString("ATTACH TABLE ")
	}
	b.WriteString(d.Name)
	b.WriteString("\n(\n")

	var defs []string
	for _, c := range d.Columns {
		defs = append(defs, fmt.Sprintf("    %s %s", c.Name, c.Type))
	}
	for _, ix := range d.Indices {
		defs = append(defs, fmt.Sprintf("    INDEX %s %s", ix.Name, ix.Expr))
	}
	for _, ct := range d.Constraints {
		defs = append(defs, fmt.Sprintf("    CONSTRAINT %s CHECK %s", ct.Name, ct.Expr))
	}
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n)")

	if d.Kind == KindDictionary {
		if d.Source != "" {
			b.WriteString("\nSOURCE(")
			b.WriteString(d.Source)
			b.WriteString(")")
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\nENGINE = ")
	b.WriteString(d.Engine)
	if d.OrderBy != "" {
		b.WriteString("\nORDER BY ")
		b.WriteString(d.OrderBy)
	}
	if d.PrimaryKey != "" {
		b.WriteString("\nPRIMARY KEY ")
		b.WriteString(d.PrimaryKey)
	}
	if d.TTL != "" {
		b.WriteString("\nTTL ")
		b.WriteString(d.TTL)
	}
	if len(d.Settings) > 0 {
		pairs := make([]string, 0, len(d.Settings))
		for _, s := range d.Settings {
			pairs = append(pairs, fmt.Sprintf("%s = %s", s.Key, s.Value))
		}
		b.WriteString("\nSETTINGS ")
		b.WriteString(strings.Join(pairs, ", "))
	}
	b.WriteString("\n")
	return b.String()
}
