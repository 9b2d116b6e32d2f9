package format

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/styles"
	"github.com/germanamz/rewriter/pkg/rewrite"
)

// CopiedToast is shown next to the copy hint while the indicator is on.
const CopiedToast = "Copied to Clipboard!"

// ResultView holds what RenderResult needs besides the result itself.
type ResultView struct {
	Width    int
	Copied   bool
	ShowDiff bool
	Draft    string // submitted draft, for the diff view
}

// RenderResult renders a successful response: the email headers with their
// fallbacks, the body verbatim, the copy hint or toast and the caution line.
// A result carrying an error descriptor is rendered as an error block with
// its raw content instead.
func RenderResult(res rewrite.Result, v ResultView) string {
	if res.Failed() {
		return RenderError("Error in Response", res.Error, res.RawContent, v.Width)
	}

	inner := max(v.Width-4, 20)

	var b strings.Builder
	b.WriteString(styles.ResultTitleStyle.Render("✨ Rewritten Email"))
	b.WriteString("\n\n")
	b.WriteString(header("Subject:", res.DisplaySubject()))
	b.WriteString("\n")
	b.WriteString(header("To:", res.DisplayRecipient()))
	b.WriteString("\n")
	b.WriteString(header("From:", res.DisplaySender()))
	b.WriteString("\n\n")

	if v.ShowDiff {
		b.WriteString(RenderDiff(v.Draft, res.Body))
	} else {
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(res.DisplayBody()))
	}
	b.WriteString("\n\n")

	if v.Copied {
		b.WriteString(styles.ToastStyle.Render(CopiedToast))
	} else {
		b.WriteString(styles.DimStyle.Render("ctrl+y: copy rewritten email  ctrl+d: toggle diff"))
	}

	if res.Caution != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.CautionKeyStyle.Render("⚠️ IMPORTANT CAUTION:"))
		b.WriteString(" ")
		b.WriteString(styles.CautionTextStyle.Render(res.Caution))
	}

	return styles.ResultBorder.Width(inner).Render(b.String())
}

// RenderError renders the inline error panel. raw, when set, is shown
// verbatim below the message.
func RenderError(title, msg, raw string, width int) string {
	var b strings.Builder
	b.WriteString(styles.ErrorTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(msg)

	if raw != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.LabelStyle.Render("Raw Response:"))
		b.WriteString("\n")
		b.WriteString(styles.RawContentStyle.Render(RenderCode("json", raw)))
	}

	return styles.ErrorBlockStyle.Width(max(width-2, 20)).Render(b.String())
}

func header(key, value string) string {
	return styles.HeaderKeyStyle.Render(key) + " " + value
}
