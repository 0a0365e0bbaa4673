package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/canvas-notify/internal/models"
	"github.com/avolkov/canvas-notify/internal/textutil"
)

const (
	courseShortLen  = 25
	detailDescLimit = 1500
)

// List renders the upcoming-assignment report as a MarkdownV2 message.
// now must already be in the report's target timezone.
func List(records []models.AssignmentRecord, daysAhead int, now time.Time) string {
	if len(records) == 0 {
		return "✅ " + textutil.EscapeMarkdownV2(fmt.Sprintf("No assignments due in the next %d days.", daysAhead))
	}

	header := textutil.EscapeMarkdownV2(fmt.Sprintf("Upcoming Assignments (Next %d Days):", daysAhead))
	parts := []string{"*" + header + "*"}

	for i, r := range records {
		name := textutil.EscapeMarkdownV2(r.Name)
		course := textutil.EscapeMarkdownV2(shortCourse(r.CourseName, courseShortLen))

		dayStr := relativeDay(r.DueAt, now)
		timeStr := textutil.EscapeMarkdownV2(textutil.FormatClock(r.DueAt))

		estStr := ""
		if r.EstimatedHours != nil {
			estStr = fmt.Sprintf(" \\| Est: *%s hrs*", textutil.EscapeMarkdownV2(formatHours(*r.EstimatedHours)))
		}

		link := textutil.EscapeMarkdownV2("No Link")
		if r.HTMLURL != "" {
			link = fmt.Sprintf("[%s](%s)", textutil.EscapeMarkdownV2("Link"), textutil.EscapeURLParens(r.HTMLURL))
		}

		index := textutil.EscapeMarkdownV2(fmt.Sprintf("[%d]", i+1))
		block := fmt.Sprintf("*%s* 📝 *%s*\n   ↳ Course: _%s_\n   ↳ Due: %s at %s%s\n   ↳ %s",
			index, name, course, dayStr, timeStr, estStr, link)
		parts = append(parts, block)
	}

	hint := textutil.EscapeMarkdownV2("Use `/ask <question>` for general help or `details N` for specific assignment info.")
	parts = append(parts, "\n*"+hint+"*")

	return strings.Join(parts, "\n\n")
}

// Details renders one assignment's full detail view as MarkdownV2.
func Details(r *models.AssignmentRecord, now time.Time) string {
	if r == nil {
		return "⚠️ Assignment details not found" + textutil.EscapeMarkdownV2(".")
	}

	var sections []string
	sections = append(sections, "📝 *"+textutil.EscapeMarkdownV2(r.Name)+"*")
	sections = append(sections, "📚 *Course:* "+textutil.EscapeMarkdownV2(r.CourseName))

	dueStr := textutil.EscapeMarkdownV2("No due date")
	if !r.DueAt.IsZero() {
		dueStr = fmt.Sprintf("%s at %s",
			relativeDayLong(r.DueAt, now),
			textutil.EscapeMarkdownV2(textutil.FormatClock(r.DueAt)))
	}
	sections = append(sections, "🕒 *Due:* "+dueStr)

	if r.UnlockAt != nil {
		sections = append(sections, "🔓 *Available from:* "+textutil.EscapeMarkdownV2(formatStamp(*r.UnlockAt)))
	}
	if r.LockAt != nil {
		sections = append(sections, "🔒 *Locks at:* "+textutil.EscapeMarkdownV2(formatStamp(*r.LockAt)))
	}
	if r.PointsPossible != nil {
		points := strconv.FormatFloat(*r.PointsPossible, 'f', -1, 64)
		sections = append(sections, "💯 *Points:* "+textutil.EscapeMarkdownV2(points))
	}
	if len(r.SubmissionTypes) > 0 {
		types := make([]string, len(r.SubmissionTypes))
		for i, st := range r.SubmissionTypes {
			types[i] = textutil.EscapeMarkdownV2(titleWords(strings.ReplaceAll(st, "_", " ")))
		}
		sections = append(sections, "📤 *Submission Type:* "+strings.Join(types, ", "))
	}
	if len(r.AllowedExtensions) > 0 {
		exts := make([]string, len(r.AllowedExtensions))
		for i, ext := range r.AllowedExtensions {
			exts[i] = textutil.EscapeMarkdownV2(ext)
		}
		sections = append(sections, "📎 *Allowed File Types:* "+strings.Join(exts, ", "))
	}
	if len(r.Attachments) > 0 {
		lines := []string{"📎 *Attachments:*"}
		for _, att := range r.Attachments {
			name := textutil.EscapeMarkdownV2(att.DisplayName)
			if att.URL != "" {
				lines = append(lines, fmt.Sprintf("• [%s](%s)", name, textutil.EscapeURLParens(att.URL)))
			} else {
				lines = append(lines, "• "+name)
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if desc := textutil.CleanHTML(r.Description); desc != "" {
		desc = textutil.Truncate(desc, detailDescLimit)
		sections = append(sections, "📄 *Description:*\n"+textutil.EscapeMarkdownV2(desc))
	}
	if r.AISummary != "" {
		sections = append(sections, "🤖 *AI Summary:*\n"+textutil.EscapeMarkdownV2(r.AISummary))
	}
	if r.HTMLURL != "" {
		sections = append(sections, fmt.Sprintf("🔗 [%s](%s)",
			textutil.EscapeMarkdownV2("View on Canvas"), textutil.EscapeURLParens(r.HTMLURL)))
	}

	return strings.Join(sections, "\n\n")
}

// relativeDay labels a due date relative to now: bold Today/Tomorrow, else
// the escaped weekday name.
func relativeDay(due, now time.Time) string {
	switch {
	case sameDate(due, now):
		return "*Today*"
	case sameDate(due, now.AddDate(0, 0, 1)):
		return "*Tomorrow*"
	default:
		return textutil.EscapeMarkdownV2(due.Format("Monday"))
	}
}

// relativeDayLong is the detail-view variant, falling back to a fuller date.
func relativeDayLong(due, now time.Time) string {
	switch {
	case sameDate(due, now):
		return "*Today*"
	case sameDate(due, now.AddDate(0, 0, 1)):
		return "*Tomorrow*"
	default:
		return textutil.EscapeMarkdownV2(due.Format("Monday, Jan 02"))
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// shortCourse keeps the last segment after any " - " delimiter, capped at n.
func shortCourse(name string, n int) string {
	parts := strings.Split(name, " - ")
	short := parts[len(parts)-1]
	if r := []rune(short); len(r) > n {
		short = string(r[:n])
	}
	return short
}

// formatHours prints the integer value when the estimate is exact, else one
// decimal place.
func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return strconv.FormatInt(int64(h), 10)
	}
	return strconv.FormatFloat(h, 'f', 1, 64)
}

func formatStamp(t time.Time) string {
	return strings.ToLower(t.Format("Jan 02, 2006 at 3:04 pm"))
}

// titleWords capitalizes the first letter of each space-separated word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
