// Package report renders engine results as terminal text.
package report

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/coaching"
	"github.com/abhisek/examcoach/internal/examsim"
	"github.com/abhisek/examcoach/internal/mastery"
	"github.com/abhisek/examcoach/internal/misconception"
	"github.com/abhisek/examcoach/internal/practice"
	"github.com/abhisek/examcoach/internal/spacedrep"
	"github.com/abhisek/examcoach/internal/store"
	"github.com/abhisek/examcoach/internal/ui/theme"
)

// barWidth is the cell width of mastery bars.
const barWidth = 20

// Printer writes reports to w. Styling is skipped when styled is false.
type Printer struct {
	w      io.Writer
	styled bool
}

// New returns a Printer writing to w.
func New(w io.Writer, styled bool) *Printer {
	return &Printer{w: w, styled: styled}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) title(text string) {
	p.printf("%s\n", p.render(theme.Title, text))
}

func (p *Printer) rule(n int) {
	p.printf("%s\n", p.render(theme.Subtitle, strings.Repeat("─", n)))
}

func (p *Printer) bandStyle(m float64) lipgloss.Style {
	switch coaching.BandFor(m) {
	case coaching.BandLow:
		return theme.Low
	case coaching.BandMedium:
		return theme.Medium
	default:
		return theme.High
	}
}

// Bar renders a horizontal bar for a 0-100 score.
func (p *Printer) Bar(score float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(float64(width) * score / 100)
	filled = max(0, min(filled, width))
	empty := width - filled
	if !p.styled {
		return strings.Repeat("#", filled) + strings.Repeat(".", empty)
	}
	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
}

// Mastery prints objective or misconception rows.
func (p *Printer) Mastery(heading string, rows []mastery.Row) {
	p.title(heading)
	p.printf("%-12s  %-32s  %-*s  %7s  %8s  %s\n",
		"ID", "Title", barWidth, "", "Mastery", "Attempts", "Items")
	p.rule(90)
	for _, r := range rows {
		score := p.render(p.bandStyle(r.Mastery), fmt.Sprintf("%7.1f", r.Mastery))
		p.printf("%-12s  %-32s  %s  %s  %8d  %d/%d\n",
			r.ID, truncate(r.Title, 32), p.Bar(r.Mastery, barWidth), score,
			r.Attempts, r.AttemptedItems, r.LinkedItems)
	}
	p.printf("\n%d rows\n", len(rows))
}

// Misconceptions prints ranked misconception priorities.
func (p *Printer) Misconceptions(ps []misconception.Priority) {
	p.title("Misconceptions")
	p.printf("%-28s  %7s  %8s  %8s  %9s  %s\n",
		"Tag", "Score", "Weakness", "ObjWeak", "Cards", "Objectives")
	p.rule(90)
	for _, pr := range ps {
		cards := fmt.Sprintf("%d/%d", pr.DueCards, pr.Cards)
		if pr.DueCards > 0 {
			cards = p.render(theme.Due, fmt.Sprintf("%9s", cards))
		} else {
			cards = fmt.Sprintf("%9s", cards)
		}
		p.printf("%-28s  %7.2f  %8.1f  %8.1f  %s  %s\n",
			truncate(pr.Tag, 28), pr.Score, pr.Weakness, pr.LinkedObjectiveWeakness,
			cards, strings.Join(pr.ObjectiveIDs, ","))
	}
	p.printf("\n%d tags\n", len(ps))
}

// Plan prints one coaching plan.
func (p *Printer) Plan(pl coaching.Plan) {
	if pl.Activity == coaching.ActivityNone && pl.Empty() {
		p.printf("%s\n", p.render(theme.Hint, "Nothing to practise: the catalog has no objectives with content."))
		return
	}
	head := fmt.Sprintf("%s  %s", pl.ObjectiveID, pl.ObjectiveTitle)
	p.title(strings.TrimSpace(head))
	p.printf("  %s %s  %s\n", p.Bar(pl.Mastery, barWidth),
		p.render(p.bandStyle(pl.Mastery), fmt.Sprintf("%.1f", pl.Mastery)), pl.Band)
	p.printf("  activity  %s\n", p.render(theme.Heading, string(pl.Activity)))
	if pl.Section != nil {
		p.printf("  section   %s (%s, %d matches)\n", pl.Section.Title, pl.Section.Source, pl.Section.Matches)
	}
	if pl.BundleID != "" {
		p.printf("  bundle    %s\n", pl.BundleID)
	}
	if len(pl.QuestionIDs) > 0 {
		p.printf("  questions %s\n", strings.Join(pl.QuestionIDs, ", "))
	}
	if len(pl.Loosened) > 0 {
		p.printf("  %s\n", p.render(theme.Warn, "loosened: "+strings.Join(pl.Loosened, ", ")))
	}
	if pl.Fallback {
		p.printf("  %s\n", p.render(theme.Warn, "fallback: weakest objective had no content"))
	}
	p.printf("  %s %s\n", p.render(theme.Hint, "open"), pl.Target.Href)
	p.printf("  %s %s\n", p.render(theme.Hint, "plan"), pl.ID)
}

// Plans prints several coaching plans.
func (p *Printer) Plans(pls []coaching.Plan) {
	for i, pl := range pls {
		if i > 0 {
			p.printf("\n")
		}
		p.Plan(pl)
	}
	if len(pls) == 0 {
		p.printf("%s\n", p.render(theme.Hint, "No objectives with content."))
	}
}

// Queue prints the balanced review queue.
func (p *Printer) Queue(entries []spacedrep.QueueEntry) {
	p.title("Review queue")
	if len(entries) == 0 {
		p.printf("%s\n", p.render(theme.Hint, "No cards are due."))
		return
	}
	p.printf("%3s  %-24s  %-12s  %-10s  %-8s  %s\n", "#", "Card", "Group", "Due", "Status", "Urgency")
	p.rule(80)
	for i, e := range entries {
		status := fmt.Sprintf("%-8s", e.Status)
		switch spacedrep.ReviewStatus(e.Status) {
		case spacedrep.ReviewOverdue:
			status = p.render(theme.Overdue, status)
		case spacedrep.ReviewDue:
			status = p.render(theme.Due, status)
		default:
			status = p.render(theme.Hint, fmt.Sprintf("%-8s", fmt.Sprintf("in %dd", e.DueInDays)))
		}
		p.printf("%3d  %-24s  %-12s  %-10s  %s  %.2f\n",
			i+1, truncate(e.CardID, 24), truncate(e.Group, 12), e.Due.Format("2006-01-02"), status, e.Urgency)
	}
}

// Exam prints an exam simulation summary and its items.
func (p *Printer) Exam(pl examsim.Plan, showItems bool) {
	p.title(fmt.Sprintf("Exam simulation %s", pl.ID))
	p.printf("  policy %s  seed %q  %d questions  %d min\n",
		pl.PolicyVersion, pl.Seed, pl.TotalQuestions, pl.DurationMinutes)
	p.printf("  scenario %d  interactive %d\n\n", pl.ScenarioCount, pl.InteractiveCount)
	p.printf("%-12s  %-28s  %6s  %6s  %6s  %9s\n", "Domain", "Title", "Weight", "Target", "Actual", "Available")
	p.rule(80)
	for _, d := range pl.Domains {
		actual := fmt.Sprintf("%6d", d.Actual)
		if d.Actual < d.Target {
			actual = p.render(theme.Warn, actual)
		}
		p.printf("%-12s  %-28s  %6.2f  %6d  %s  %9d\n",
			d.DomainID, truncate(d.Title, 28), d.Weight, d.Target, actual, d.Available)
	}
	for _, w := range pl.Warnings {
		p.printf("%s\n", p.render(theme.Warn, "warning: "+w))
	}
	if !showItems {
		return
	}
	p.printf("\n")
	for i, it := range pl.Items {
		var flags []string
		if it.Scenario {
			flags = append(flags, "scenario")
		}
		if it.Interactive {
			flags = append(flags, "interactive")
		}
		p.printf("%3d  %-24s  %-10s  %-14s  %s\n", i+1, it.QuestionID, it.DomainID, it.Type, strings.Join(flags, ","))
	}
}

// Echo prints the header of a stored plan echo.
func (p *Printer) Echo(e *store.PlanEcho) {
	p.printf("%s\n", p.render(theme.Hint,
		fmt.Sprintf("%s plan %s saved %s", e.Kind, e.PlanID, e.CreatedAt.Local().Format("2006-01-02 15:04"))))
}

// Answer prints the state written for one answer.
func (p *Printer) Answer(res practice.AnswerResult) {
	style := theme.High
	if res.Outcome == spacedrep.OutcomeWrong {
		style = theme.Low
	}
	p.printf("%s  %s  (%d/%d correct)\n", res.Stat.ItemID,
		p.render(style, string(res.Outcome)), res.Stat.Correct, res.Stat.Attempts)
	if res.Card != nil {
		verb := "reviewed"
		if res.Created {
			verb = "created"
		}
		p.printf("  card %s %s: next review %s (interval %dd, ease %.2f)\n",
			res.Card.ID, verb, res.Card.Due.Format("2006-01-02"), res.Card.Interval, res.Card.Ease)
	}
	p.printf("  %s %s\n", p.render(theme.Hint, "session"), res.SessionID)
}

// Issues prints catalog issues, one per line.
func (p *Printer) Issues(issues []catalog.Issue) {
	for _, is := range issues {
		p.printf("%s\n", p.render(theme.Warn, is.String()))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
