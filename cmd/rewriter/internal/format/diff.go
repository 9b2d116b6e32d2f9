package format

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/styles"
)

// UnifiedDiff returns a unified diff from the submitted draft to the
// rewritten body. Identical texts yield "".
func UnifiedDiff(draft, rewritten string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(draft),
		B:        difflib.SplitLines(rewritten),
		FromFile: "draft",
		ToFile:   "rewritten",
		Context:  2,
	}

	return difflib.GetUnifiedDiffString(diff)
}

// RenderDiff colorizes the unified diff between draft and rewritten. When
// the texts are identical a short note is returned instead.
func RenderDiff(draft, rewritten string) string {
	diff, err := UnifiedDiff(draft, rewritten)
	if err != nil {
		return styles.DiffDelStyle.Render("diff failed: " + err.Error())
	}
	if diff == "" {
		return styles.DimStyle.Render("(no changes)")
	}

	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			out = append(out, styles.DimStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			out = append(out, styles.DiffHunkStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			out = append(out, styles.DiffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			out = append(out, styles.DiffDelStyle.Render(line))
		default:
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
