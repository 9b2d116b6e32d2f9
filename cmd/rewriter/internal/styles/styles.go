package styles

import "github.com/charmbracelet/lipgloss"

// GitHub terminal light theme palette.
var (
	ColorFg      = lipgloss.Color("#24292f") // primary foreground
	ColorMuted   = lipgloss.Color("#656d76") // muted/dim text
	ColorAccent  = lipgloss.Color("#0969da") // accent blue
	ColorError   = lipgloss.Color("#cf222e") // error red
	ColorSuccess = lipgloss.Color("#1a7f37") // success green
	ColorWarning = lipgloss.Color("#9a6700") // warning amber
	ColorCaution = lipgloss.Color("#b20000") // caution line
	ColorMagenta = lipgloss.Color("#8250df") // purple/magenta
)

// Centralized style definitions for the TUI.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// Form styles.
	LabelStyle        = lipgloss.NewStyle().Bold(true)
	FocusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	FocusedBorder     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorAccent)
	BlurredBorder     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted)

	// Settings sidebar.
	SidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMagenta).
			Padding(0, 1)
	SidebarTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMagenta)

	// Result styles.
	ResultBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 1)
	ResultTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	HeaderKeyStyle   = lipgloss.NewStyle().Bold(true)
	CautionKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorCaution)
	CautionTextStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCaution)
	ToastStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)

	// Diff styles.
	DiffAddStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	DiffDelStyle  = lipgloss.NewStyle().Foreground(ColorError)
	DiffHunkStyle = lipgloss.NewStyle().Foreground(ColorMagenta)

	// Spinner / animation styles.
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorMagenta)

	// General utility styles.
	DimStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// Error block style.
	ErrorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(ColorError)
	ErrorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	RawContentStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
