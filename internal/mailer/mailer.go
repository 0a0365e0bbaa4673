package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// chunkDelay spaces out chunked sends so the gateway delivers them in order.
const chunkDelay = 2 * time.Second

// Mailer sends plain-text notifications through an SMTP server to an
// email-to-SMS gateway address.
type Mailer struct {
	host     string
	port     int
	sender   string
	password string
	to       string
	logger   *zap.Logger
	delay    time.Duration

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(host string, port int, sender, password, to string, logger *zap.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		to:       to,
		logger:   logger,
		delay:    chunkDelay,
		send:     smtp.SendMail,
	}
}

// Send delivers one message body. An empty body is skipped, not an error.
func (m *Mailer) Send(body string) error {
	if strings.TrimSpace(body) == "" {
		m.logger.Warn("empty message body, skipping send")
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\n\r\n%s", m.sender, m.to, body))
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)

	if err := m.send(addr, auth, m.sender, []string{m.to}, msg); err != nil {
		return fmt.Errorf("send to %s: %w", m.to, err)
	}
	m.logger.Info("notification sent", zap.String("to", m.to), zap.Int("bytes", len(body)))
	return nil
}

// SendChunked delivers each chunk as its own message with a short delay
// between sends. A failed chunk is logged and the rest still go out.
func (m *Mailer) SendChunked(chunks []string) {
	for i, chunk := range chunks {
		if i > 0 {
			time.Sleep(m.delay)
		}
		if err := m.Send(chunk); err != nil {
			m.logger.Error("chunk send failed", zap.Int("part", i+1), zap.Error(err))
		}
	}
}
