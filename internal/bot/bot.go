package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avolkov/canvas-notify/internal/models"
	"github.com/avolkov/canvas-notify/internal/render"
	"github.com/avolkov/canvas-notify/internal/session"
	"github.com/avolkov/canvas-notify/internal/textutil"
)

// askAnswerLimit caps answers before sending; Telegram rejects messages
// over 4096 characters.
const askAnswerLimit = 4000

var detailsRe = regexp.MustCompile(`(?i)^(?:details|info|assignment)\s+(\d+)`)

// Reporter runs the aggregation pipeline.
type Reporter interface {
	Upcoming(ctx context.Context) ([]models.AssignmentRecord, error)
	Details(ctx context.Context, courseID, assignmentID int64) (*models.AssignmentRecord, error)
}

// Asker answers free-form questions with session context.
type Asker interface {
	Ask(ctx context.Context, question string, records []models.AssignmentRecord, history []models.ConversationTurn) (string, error)
}

// sender is the slice of the Telegram API the bot uses to deliver messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot is the Telegram command surface. All session state lives in the
// store, keyed by chat id; the delivery framework serializes commands per
// chat so no two in-flight pipelines share a session.
type Bot struct {
	api       *tgbotapi.BotAPI
	send      sender
	reporter  Reporter
	asker     Asker
	sessions  *session.Store
	loc       *time.Location
	daysAhead int
	// reportChatID is the fixed target for scheduled runs; 0 disables them.
	reportChatID int64
	logger       *zap.Logger

	now func() time.Time
}

func New(token string, reporter Reporter, asker Asker, sessions *session.Store, loc *time.Location, daysAhead int, reportChatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		api:          api,
		send:         api,
		reporter:     reporter,
		asker:        asker,
		sessions:     sessions,
		loc:          loc,
		daysAhead:    daysAhead,
		reportChatID: reportChatID,
		logger:       logger,
		now:          time.Now,
	}
	return b, nil
}

// Run polls for updates until ctx is cancelled. Each update is handled on
// its own goroutine so a slow Canvas or model call never stalls update
// handling.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))
	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}
	b.handleText(ctx, message)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "check":
		b.handleCheck(ctx, message)
	case "ask":
		b.handleAsk(ctx, message)
	default:
		b.sendPlain(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.logger.Info("received /start",
		zap.Int64("chat_id", chatID),
		zap.String("user", message.From.UserName))

	// A fresh /start drops any stale assignment index and history.
	b.sessions.Clear(chatID)

	welcome := `Hello! 👋

I'm your Canvas Assignment Notifier Bot.

I can send you daily summaries of upcoming assignments with AI time estimates and answer general questions.

Available commands:
/check - Check for upcoming assignments
/ask <question> - Ask the AI assistant a question
/help - Show help information

After using /check, you can also send 'details N' to get more information about a specific assignment.`
	b.sendPlain(chatID, welcome)
	b.sessions.AppendTurn(chatID, models.RoleAssistant, "Sent welcome message and command list.")
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `🤖 Canvas Assignment Notifier Help

Commands:
• /start - Start the bot
• /check - Check for upcoming assignments
• /ask <question> - Ask the AI assistant a question (e.g. '/ask explain photosynthesis')
• /help - Show this help message

Features:
• Daily assignment summaries (if configured)
• AI-estimated completion times
• AI assistant for general academic questions
• Detailed assignment information

Getting Assignment Details:
After using /check, send 'details N' to see full information about assignment number N.
Example: details 2`
	b.sendPlain(message.Chat.ID, help)
}

func (b *Bot) handleCheck(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.logger.Info("received /check", zap.Int64("chat_id", chatID))

	b.sendPlain(chatID, "🔍 Checking Canvas for upcoming assignments... This may take a moment.")

	records, err := b.reporter.Upcoming(ctx)
	if err != nil {
		b.logger.Error("check failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendMarkdown(chatID, "⚠️ Error connecting to Canvas"+textutil.EscapeMarkdownV2(". Please try again later."))
		return
	}

	b.sessions.SetAssignments(chatID, records)
	b.sendMarkdown(chatID, render.List(records, b.daysAhead, b.now().In(b.loc)))
	b.sessions.AppendTurn(chatID, models.RoleAssistant, fmt.Sprintf("Listed %d upcoming assignments.", len(records)))

	b.logger.Info("sent check results",
		zap.Int64("chat_id", chatID),
		zap.Int("assignments", len(records)))
}

func (b *Bot) handleAsk(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	question := message.CommandArguments()

	if question == "" {
		reply := "❓ Please provide a question after the /ask command.\nExample: /ask what is assignment [1] about?"
		b.sendPlain(chatID, reply)
		return
	}

	// History captured before this question so the prompt sees only prior
	// turns.
	history := b.sessions.History(chatID)
	b.sessions.AppendTurn(chatID, models.RoleUser, "/ask "+question)

	b.sendPlain(chatID, "🤖 Thinking... (using context if available)")

	answer, err := b.asker.Ask(ctx, question, b.sessions.Assignments(chatID), history)
	if err != nil {
		b.logger.Error("ask failed", zap.Int64("chat_id", chatID), zap.Error(err))
		reply := "⚠️ Sorry, I encountered an error while trying to answer your question. Please try again later."
		b.sendPlain(chatID, reply)
		b.sessions.AppendTurn(chatID, models.RoleAssistant, reply)
		return
	}

	if r := []rune(answer); len(r) > askAnswerLimit {
		answer = string(r[:askAnswerLimit]) + "..."
	}
	b.sendPlain(chatID, answer)
	b.sessions.AppendTurn(chatID, models.RoleAssistant, answer)
}

// handleText watches non-command text for "details N" style requests
// against the chat's most recent /check results.
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	m := detailsRe.FindStringSubmatch(message.Text)
	if m == nil {
		return
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	b.logger.Info("details request", zap.Int64("chat_id", chatID), zap.Int("index", index))

	cached, count, ok := b.sessions.Assignment(chatID, index)
	if count == 0 {
		b.sendMarkdown(chatID, "⚠️ "+textutil.EscapeMarkdownV2("No assignment list found. Please use /check first to list assignments."))
		return
	}
	if !ok {
		b.sendMarkdown(chatID, "⚠️ "+textutil.EscapeMarkdownV2(fmt.Sprintf(
			"Assignment %d not found in the last /check results. Available assignments are numbered 1-%d.", index, count)))
		return
	}

	b.sendPlain(chatID, fmt.Sprintf("🔍 Fetching details for assignment %d...", index))

	// Prefer a fresh fetch with an AI summary; fall back to the cached
	// record when ids are missing or the fetch comes back empty.
	rec := &cached
	if cached.AssignmentID != 0 && cached.CourseID != 0 {
		fetched, err := b.reporter.Details(ctx, cached.CourseID, cached.AssignmentID)
		if err == nil && fetched != nil {
			rec = fetched
		} else {
			b.logger.Warn("detail fetch failed, using cached record",
				zap.Int64("assignment_id", cached.AssignmentID))
		}
	}

	b.sendMarkdown(chatID, render.Details(rec, b.now().In(b.loc)))
}

// RunScheduled executes one scheduled pipeline run against the configured
// report chat. All failures are contained here; nothing may prevent the
// next day's fire.
func (b *Bot) RunScheduled(ctx context.Context) {
	runID := uuid.New().String()
	logger := b.logger.With(zap.String("run_id", runID), zap.Int64("chat_id", b.reportChatID))
	logger.Info("running scheduled assignment check")

	records, err := b.reporter.Upcoming(ctx)
	if err != nil {
		logger.Error("scheduled check failed", zap.Error(err))
		b.sendPlain(b.reportChatID, "⚠️ Scheduled check failed: error connecting to Canvas.")
		return
	}

	b.sessions.SetAssignments(b.reportChatID, records)
	b.sendMarkdown(b.reportChatID, render.List(records, b.daysAhead, b.now().In(b.loc)))
	logger.Info("sent scheduled summary", zap.Int("assignments", len(records)))
}

func (b *Bot) sendPlain(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.send.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// sendMarkdown sends a MarkdownV2 message with link previews suppressed,
// falling back to a plain-text error notice when the send fails.
func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := b.send.Send(msg); err != nil {
		b.logger.Error("failed to send formatted message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendPlain(chatID, "⚠️ Error formatting message. Please try again.")
	}
}
