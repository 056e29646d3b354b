// Package printer writes formatted CLI output: status lines, translation
// records and error boxes.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"golang.org/x/term"

	"github.com/hay-kot/lingo/internal/core/translation"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorBlue      = "\033[38;2;122;162;247m" // #7aa2f7
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Arrow = "→"
)

type ctxKey struct{}

// Printer handles formatted output with colors and styles
type Printer struct {
	writer io.Writer
	color  bool
}

// New creates a new Printer that writes to the given writer. Colors are
// enabled when w is a terminal and NO_COLOR is unset.
func New(w io.Writer) *Printer {
	return &Printer{
		writer: w,
		color:  IsTerminal(w) && os.Getenv("NO_COLOR") == "",
	}
}

// WithColor forces colors on or off.
func (p *Printer) WithColor(enabled bool) *Printer {
	p.color = enabled
	return p
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of the printer's writer, or fallback when
// it is not a terminal.
func (p *Printer) Width(fallback int) int {
	f, ok := p.writer.(*os.File)
	if !ok {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit
// Caller should handle exit code
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	lines := []string{
		p.colorize(ColorRed, "╭ Error"),
		p.colorize(ColorRed, "│") + " " + p.colorize(ColorGray, err.Error()),
		p.colorize(ColorRed, "╵"),
	}

	p.write(strings.Join(lines, "\n"))
}

// printValidationErrors formats criterio.FieldErrors nicely
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	// Keep the wrapping context, e.g. "load config: invalid config"
	errStr := wrappedErr.Error()
	errContext := ""
	if idx := strings.Index(errStr, fieldErrs.Error()); idx > 0 {
		errContext = strings.TrimSuffix(errStr[:idx], ": ")
	}

	p.write(p.colorize(ColorRed, "╭ Validation Error"))

	if errContext != "" {
		p.write(p.colorize(ColorRed, "│") + " " + p.colorize(ColorGray, errContext))
		p.write(p.colorize(ColorRed, "│"))
	}

	for _, fe := range fieldErrs {
		line := p.colorize(ColorRed, "│") + " " + p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			line += p.colorize(ColorGray, fe.Field+": ")
		}
		line += fe.Err.Error()
		p.write(line)
	}

	p.write(p.colorize(ColorRed, "╵"))
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.write(p.colorize(ColorRed, Cross+" "+fmt.Sprintf(format, args...)))
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.write(p.colorize(ColorGreen, Check+" "+fmt.Sprintf(format, args...)))
}

// Infof prints an info message in gray
func (p *Printer) Infof(format string, args ...any) {
	p.write(p.colorize(ColorGray, Dot+" "+fmt.Sprintf(format, args...)))
}

// Warnf prints a warning message in yellow
func (p *Printer) Warnf(format string, args ...any) {
	p.write(p.colorize(ColorYellow, Dot+" "+fmt.Sprintf(format, args...)))
}

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	p.write(fmt.Sprintf(format, args...))
}

// Section prints a section header (bold + underlined)
func (p *Printer) Section(title string) {
	p.write(p.colorize(ColorBold+ColorUnderline, title))
}

// Translation prints the translated text of r followed by its language pair.
func (p *Printer) Translation(r translation.Record) {
	p.write(r.TranslatedText)
	p.write(p.colorize(ColorGray, fmt.Sprintf("%s %s %s", r.SourceLang, Arrow, r.TargetLang)))
}

// RecordLine prints r as one history line: index, language pair, a clipped
// source text and the id.
func (p *Printer) RecordLine(index int, r translation.Record, width int) {
	pair := fmt.Sprintf("%s %s %s", r.SourceLang, Arrow, r.TargetLang)
	text := oneLine(r.SourceText) + " " + Arrow + " " + oneLine(r.TranslatedText)
	if width > 0 {
		text = clip(text, width)
	}

	p.write(fmt.Sprintf("%3d  %s  %s  %s",
		index,
		p.colorize(ColorBlue, pair),
		text,
		p.colorize(ColorGray, r.ID),
	))
}

// CheckItem prints a success item with green checkmark
func (p *Printer) CheckItem(label, detail string) {
	p.printItem(ColorGreen, Check, label, detail)
}

// WarnItem prints a warning item with yellow dot
func (p *Printer) WarnItem(label, detail string) {
	p.printItem(ColorYellow, Dot, label, detail)
}

// FailItem prints a failure item with red cross
func (p *Printer) FailItem(label, detail string) {
	p.printItem(ColorRed, Cross, label, detail)
}

func (p *Printer) printItem(color, symbol, label, detail string) {
	line := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.write(line)
}

func (p *Printer) write(line string) {
	_, _ = io.WriteString(p.writer, line+"\n")
}

// colorize applies ANSI color codes to text
func (p *Printer) colorize(color, text string) string {
	if !p.color {
		return text
	}
	return color + text + ColorReset
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
