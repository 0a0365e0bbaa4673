package render

import (
	"fmt"
	"strings"

	"github.com/avolkov/canvas-notify/internal/models"
)

const (
	// plainMessageCap is the overall cap for the email-to-SMS body.
	plainMessageCap = 1000
	// smsChunkSize is the per-message budget for small SMS gateways.
	smsChunkSize = 150

	moreMarker     = "[More assignments not shown]"
	truncateMarker = "[Truncated]"
)

// PlainList renders the report as plain SMS-safe text: a header line and
// compact two-line blocks separated by blank lines. The result is capped at
// plainMessageCap characters, truncating on a complete assignment boundary
// when possible.
func PlainList(records []models.AssignmentRecord, daysAhead int) string {
	if len(records) == 0 {
		return fmt.Sprintf("No assignments due in next %d days", daysAhead)
	}

	blocks := []string{fmt.Sprintf("Due in next %d days:", daysAhead)}
	for _, r := range records {
		due := strings.ToLower(r.DueAt.Format("01/02 3:04PM"))
		course := shortCourse(r.CourseName, 20)
		blocks = append(blocks, fmt.Sprintf("%s\n%s - Due %s", r.Name, course, due))
	}

	msg := strings.Join(blocks, "\n\n")
	runes := []rune(msg)
	if len(runes) <= plainMessageCap {
		return msg
	}

	truncated := string(runes[:plainMessageCap])
	cut := strings.LastIndex(strings.TrimRight(truncated, " \n"), "\n\n")
	// A cut at the header boundary would drop every assignment; treat it the
	// same as finding no boundary at all.
	if cut > strings.Index(msg, "\n\n") {
		return truncated[:cut] + "\n\n" + moreMarker
	}
	return truncated + "\n" + truncateMarker
}

// Chunk splits a plain-text message into SMS-sized segments on blank-line
// boundaries, never splitting an assignment block. When more than one chunk
// results, each is prefixed with an "(i/N)" part marker.
func Chunk(msg string) []string {
	blocks := strings.Split(msg, "\n\n")

	var chunks []string
	var cur string
	for _, block := range blocks {
		switch {
		case cur == "":
			cur = block
		case len(cur)+2+len(block) <= smsChunkSize:
			cur += "\n\n" + block
		default:
			chunks = append(chunks, cur)
			cur = block
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}

	if len(chunks) <= 1 {
		return chunks
	}
	for i := range chunks {
		chunks[i] = fmt.Sprintf("(%d/%d) %s", i+1, len(chunks), chunks[i])
	}
	return chunks
}
