package inspect

import (
	"strings"
)

// lineWidth is the combined fragment width above which children are laid out
// one per line.
const lineWidth = 60

// reduceToSingleString joins rendered children inside braces, on one line when
// they fit and one per line otherwise. base carries its own leading space.
func reduceToSingleString(output []string, base string, braces [2]string) string {
	length := 0
	for _, s := range output {
		length += visibleWidth(s) + 1
	}

	var b strings.Builder
	b.WriteString(braces[0])
	if length > lineWidth {
		if base != "" {
			b.WriteString(base)
			b.WriteString("\n ")
		}
		b.WriteString(" ")
		b.WriteString(strings.Join(output, ",\n  "))
	} else {
		b.WriteString(base)
		b.WriteString(" ")
		b.WriteString(strings.Join(output, ", "))
	}
	b.WriteString(" ")
	b.WriteString(braces[1])
	return b.String()
}
