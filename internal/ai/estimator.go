package ai

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/avolkov/canvas-notify/internal/models"
	"github.com/avolkov/canvas-notify/internal/textutil"
)

const (
	estimateDescLimit = 1000
	summaryDescLimit  = 1500
	promptListLimit   = 15
)

var numberRe = regexp.MustCompile(`(\d+(\.\d+)?)`)

// Estimator talks to a local Ollama instance through its OpenAI-compatible
// chat endpoint. Both enrichment operations are advisory: any failure
// degrades to "no result" and is never propagated to the caller.
type Estimator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewEstimator(baseURL, model string, logger *zap.Logger) *Estimator {
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	return &Estimator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// EstimateHours asks the model for a completion-time estimate and extracts
// a single numeric answer, rounded to one decimal place. Returns nil when
// the assignment has no usable description, when the reply contains no
// number, or when the endpoint is unreachable.
func (e *Estimator) EstimateHours(ctx context.Context, course, title string, due time.Time, description, url string) *float64 {
	desc := textutil.CleanHTML(description)
	if desc == "" {
		e.logger.Debug("skipping time estimate: no description", zap.String("assignment", title))
		return nil
	}
	desc = textutil.Truncate(desc, estimateDescLimit)

	var b strings.Builder
	b.WriteString("You are an AI assistant helping a college student estimate assignment completion time.\n\n")
	b.WriteString("Assignment Details:\n")
	fmt.Fprintf(&b, "- Course: %s\n", course)
	fmt.Fprintf(&b, "- Title: %s\n", title)
	fmt.Fprintf(&b, "- Due: %s\n", textutil.FormatDueLong(due))
	if url != "" {
		fmt.Fprintf(&b, "- URL: %s\n", url)
	}
	fmt.Fprintf(&b, "\nDescription:\n%s\n\n", desc)
	b.WriteString("Estimate the hours needed to complete this assignment. Consider typical college student workload. ")
	b.WriteString("Respond ONLY with a single number (e.g., '2', '3.5', '0.5').")

	reply, err := e.chat(ctx, b.String())
	if err != nil {
		e.logger.Error("time estimate failed", zap.Error(err), zap.String("assignment", title))
		return nil
	}

	hours := extractHours(reply)
	if hours == nil {
		e.logger.Warn("no numeric estimate in model reply",
			zap.String("assignment", title),
			zap.String("reply", reply))
		return nil
	}
	e.logger.Info("estimated completion time",
		zap.String("assignment", title),
		zap.Float64("hours", *hours))
	return hours
}

// Summarize asks the model for a short summary of the assignment. Returns
// "" when there is no usable description or on any failure.
func (e *Estimator) Summarize(ctx context.Context, course, title string, due time.Time, description string) string {
	desc := textutil.CleanHTML(description)
	if desc == "" {
		e.logger.Debug("skipping summary: no description", zap.String("assignment", title))
		return ""
	}
	desc = textutil.Truncate(desc, summaryDescLimit)

	var b strings.Builder
	b.WriteString("You are an AI assistant helping a college student understand an assignment.\n\n")
	b.WriteString("Assignment Details:\n")
	fmt.Fprintf(&b, "- Course: %s\n", course)
	fmt.Fprintf(&b, "- Title: %s\n", title)
	fmt.Fprintf(&b, "- Due: %s\n\n", textutil.FormatDueLong(due))
	fmt.Fprintf(&b, "Description:\n%s\n\n", desc)
	b.WriteString("Provide a 2-3 sentence summary of this assignment that highlights:\n")
	b.WriteString("1. The main task/deliverable\n")
	b.WriteString("2. Key requirements or focus areas\n")
	b.WriteString("3. Any important deadlines or submission details\n\n")
	b.WriteString("Be concise and direct.")

	reply, err := e.chat(ctx, b.String())
	if err != nil {
		e.logger.Error("summary failed", zap.Error(err), zap.String("assignment", title))
		return ""
	}
	return strings.TrimSpace(reply)
}

// Ask answers a free-form question, grounding the model with the most
// recently listed assignments and the session's conversation history.
func (e *Estimator) Ask(ctx context.Context, question string, records []models.AssignmentRecord, history []models.ConversationTurn) (string, error) {
	parts := []string{
		"You are a helpful college AI assistant integrated into a Telegram bot.",
		"You can answer general questions, but also questions about specific Canvas assignments recently listed by the bot or about the recent conversation.",
		"--- Assignment Context ---",
		formatRecordsForPrompt(records),
		"--- Conversation History ---",
		formatHistoryForPrompt(history),
		"--- Current Question ---",
		"Please answer the student's following question based on the context provided above (assignments, history) if relevant, or using your general knowledge otherwise:",
		question,
	}

	reply, err := e.chat(ctx, strings.Join(parts, "\n\n"))
	if err != nil {
		return "", fmt.Errorf("ask model: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func (e *Estimator) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// extractHours pulls the first decimal-or-integer token out of a free-form
// reply and rounds it to one decimal place. Absence of a match is a defined
// "no result", not an error.
func extractHours(reply string) *float64 {
	m := numberRe.FindStringSubmatch(reply)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	v = math.Round(v*10) / 10
	return &v
}

func formatRecordsForPrompt(records []models.AssignmentRecord) string {
	if len(records) == 0 {
		return "No assignments were recently listed."
	}
	lines := []string{"Assignments recently listed (use index [N] to refer):"}
	for i, r := range records {
		if i >= promptListLimit {
			lines = append(lines, fmt.Sprintf("... (and %d more)", len(records)-i))
			break
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s (%s) - Due: %s",
			i+1, r.Name, r.CourseName, r.DueAt.Format("Mon, Jan 02 3:04PM")))
	}
	return strings.Join(lines, "\n")
}

func formatHistoryForPrompt(history []models.ConversationTurn) string {
	if len(history) == 0 {
		return "No recent message history available."
	}
	lines := []string{"Recent conversation history:"}
	for _, turn := range history {
		role := turn.Role
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", role, strings.TrimSpace(turn.Text)))
	}
	return strings.Join(lines, "\n")
}
