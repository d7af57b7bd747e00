package orchestrator

import (
	"strings"

	"github.com/ringcast/ringcast/internal/domain/model"
)

// DefaultTemplate names files by match, both athlete blocks, then capture
// date and time. renderTemplate guarantees the literal VS separator
// between the athlete blocks, here and in operator-supplied templates.
const DefaultTemplate = "{match} {player1} ({country1}) {player2} ({country2}) {date} {time}"

// Tool-side placeholder syntax for the date and time of recording start.
const (
	toolDate = "%CCYY-%MM-%DD"
	toolTime = "%hh-%mm-%ss"
)

// renderTemplate fills the operator-facing placeholders from the match
// snapshot and translates date/time placeholders into the tool's %-syntax.
// The tool expands those at recording start.
func renderTemplate(tpl string, snap model.MatchSnapshot) string {
	if snap.Athlete2 != (model.AthleteInfo{}) {
		tpl = ensureSeparator(tpl)
	}
	r := strings.NewReplacer(
		"{match}", sanitizeName(snap.MatchNumber),
		"{player1}", sanitizeName(snap.Athlete1.Name),
		"{country1}", sanitizeName(snap.Athlete1.Country),
		"{player2}", sanitizeName(snap.Athlete2.Name),
		"{country2}", sanitizeName(snap.Athlete2.Country),
		"{date}", toolDate,
		"{time}", toolTime,
	)
	return strings.Join(strings.Fields(r.Replace(tpl)), " ")
}

// ensureSeparator inserts the literal VS between the first and second
// athlete blocks when the template does not already carry one.
func ensureSeparator(tpl string) string {
	end := -1
	for _, tok := range []string{"{player1}", "{country1}"} {
		if i := strings.LastIndex(tpl, tok); i >= 0 && i+len(tok) > end {
			end = i + len(tok)
		}
	}
	start := -1
	for _, tok := range []string{"{player2}", "{country2}"} {
		if i := strings.Index(tpl, tok); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if end < 0 || start < end {
		return tpl
	}
	if strings.Contains(tpl[end:start], "VS") {
		return tpl
	}
	return tpl[:start] + "VS " + tpl[start:]
}

// sanitizeName strips characters that are unsafe in filenames across the
// platforms the tool records on.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '%':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
