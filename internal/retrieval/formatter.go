package retrieval

import (
	"fmt"
	"sort"
	"strings"
)

// Format renders the context as one text block for an external generator.
// Sections with no content are omitted entirely; there are no empty
// headers. Map-backed sections are sorted by name so output is stable.
func Format(rc *Context) string {
	var b strings.Builder

	formatStructure(&b, rc)
	formatSnippets(&b, rc)
	formatSignatures(&b, rc)
	formatHistory(&b, rc)

	return strings.TrimRight(b.String(), "\n")
}

func formatStructure(b *strings.Builder, rc *Context) {
	if len(rc.Classes) == 0 && len(rc.Functions) == 0 {
		return
	}
	b.WriteString("## Code Structure\n\n")

	for _, name := range sortedKeys(rc.Classes) {
		ci := rc.Classes[name]
		b.WriteString("class " + ci.Name)
		if len(ci.Bases) > 0 {
			b.WriteString("(" + strings.Join(ci.Bases, ", ") + ")")
		}
		fmt.Fprintf(b, "  # %s\n", ci.Location)
		for _, m := range ci.Methods {
			fmt.Fprintf(b, "  %s(%s)  # line %d\n", m.Name, strings.Join(m.Params, ", "), m.Line)
		}
	}

	for _, name := range sortedKeys(rc.Functions) {
		fi := rc.Functions[name]
		fmt.Fprintf(b, "def %s(%s)  # %s\n", fi.Name, strings.Join(fi.Params, ", "), fi.Location)
		if len(fi.Calls) > 0 {
			fmt.Fprintf(b, "  calls: %s\n", strings.Join(fi.Calls, ", "))
		}
	}
	b.WriteString("\n")
}

func formatSnippets(b *strings.Builder, rc *Context) {
	if len(rc.Snippets) == 0 {
		return
	}
	b.WriteString("## Relevant Snippets\n\n")
	for i, s := range rc.Snippets {
		score := ""
		if i < len(rc.RelevanceScores) {
			score = fmt.Sprintf(" (relevance %.2f)", rc.RelevanceScores[i])
		}
		fmt.Fprintf(b, "### %s %s - %s:%d%s\n", s.Type, s.Name, s.File, s.Line, score)
		b.WriteString(s.Code + "\n\n")
	}
}

func formatSignatures(b *strings.Builder, rc *Context) {
	if len(rc.MethodSignatures) == 0 {
		return
	}
	b.WriteString("## Method Signatures\n\n")
	for _, class := range sortedKeys(rc.MethodSignatures) {
		bases := ""
		if parents := rc.ClassHierarchy[class]; len(parents) > 0 {
			bases = "(" + strings.Join(parents, ", ") + ")"
		}
		fmt.Fprintf(b, "class %s%s:\n", class, bases)
		for _, sig := range rc.MethodSignatures[class] {
			for _, d := range sig.Decorators {
				fmt.Fprintf(b, "  %s\n", d)
			}
			prefix := "def"
			if sig.Async {
				prefix = "async def"
			}
			ret := ""
			if sig.ReturnType != "" {
				ret = " -> " + sig.ReturnType
			}
			fmt.Fprintf(b, "  %s %s(%s)%s  # defaults: %d\n",
				prefix, sig.Name, strings.Join(sig.Params, ", "), ret, sig.DefaultCount)
		}
	}
	b.WriteString("\n")
}

func formatHistory(b *strings.Builder, rc *Context) {
	if len(rc.RecentChanges) > 0 {
		b.WriteString("## Recent Changes\n\n")
		for _, fc := range rc.RecentChanges {
			fmt.Fprintf(b, "%s:\n", fc.File)
			for _, c := range fc.Commits {
				fmt.Fprintf(b, "  %s %s (%s, %s)\n", c.ShortHash(), c.Message, c.Author, c.Timestamp)
			}
		}
		b.WriteString("\n")
	}

	if len(rc.RelatedCommits) > 0 {
		b.WriteString("## Related Commits\n\n")
		for _, rcm := range rc.RelatedCommits {
			fmt.Fprintf(b, "%s %s (score %d)\n", rcm.Commit.ShortHash(), rcm.Commit.Message, rcm.Score)
		}
		b.WriteString("\n")
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
