// Package output renders CLI results. Color is applied only when
// stdout is a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/quiverhq/quiver/internal/library"
	"github.com/quiverhq/quiver/internal/search"
)

// Color palette: single cyan accent.
const (
	colorAccent = "45"  // scores, headers
	colorGray   = "245" // ids, metadata
	colorRed    = "196" // errors
)

const snippetLength = 160

// Renderer formats results for the terminal.
type Renderer struct {
	score lipgloss.Style
	id    lipgloss.Style
	errS  lipgloss.Style
}

// NewRenderer creates a renderer. Pass StdoutIsTerminal() for colored
// to keep escape codes out of pipes.
func NewRenderer(colored bool) *Renderer {
	if !colored {
		plain := lipgloss.NewStyle()
		return &Renderer{score: plain, id: plain, errS: plain}
	}
	return &Renderer{
		score: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		id:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		errS:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
	}
}

// StdoutIsTerminal reports whether stdout is a TTY.
func StdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Results renders scored passages, one block per hit.
func (r *Renderer) Results(results []search.Result) string {
	if len(results) == 0 {
		return "no results\n"
	}

	var b strings.Builder
	for i, res := range results {
		fmt.Fprintf(&b, "%2d. %s  %s\n",
			i+1,
			r.score.Render(fmt.Sprintf("%.3f", res.Score)),
			r.id.Render(res.ID))
		fmt.Fprintf(&b, "    %s\n", snippet(res.Text))
	}
	return b.String()
}

// Documents renders the library listing.
func (r *Renderer) Documents(docs []library.Document) string {
	if len(docs) == 0 {
		return "library is empty\n"
	}

	var b strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&b, "%s  %s chunks=%d imported=%s\n",
			r.score.Render(d.ID),
			r.id.Render(d.Name),
			d.ChunkCount,
			d.ImportedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// Error renders an error line for stderr.
func (r *Renderer) Error(err error) string {
	return r.errS.Render("error: "+err.Error()) + "\n"
}

// JSON marshals any payload for --format json.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data) + "\n", nil
}

// snippet trims chunk text to one display line.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "…"
}
