package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"
)

var (
	// ErrMailDisabled 表示未启用邮件发送。
	ErrMailDisabled = errors.New("mail service disabled")
	// ErrMailNotConfigured 表示启用了邮件但缺少 SMTP 参数。
	ErrMailNotConfigured = errors.New("mail service not configured")
	// ErrInvalidRecipient 表示收件人地址无法解析。
	ErrInvalidRecipient = errors.New("invalid recipient email")
)

// Message 是一封纯文本邮件。
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender 发送邮件。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config SMTP 配置
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
	UseSSL   bool
}

// New 根据配置返回发送器，未启用时返回 Noop。
func New(cfg Config) Sender {
	if !cfg.Enabled {
		return Noop{}
	}
	return NewSMTPSender(cfg)
}

// Noop 不发送任何邮件，始终返回 ErrMailDisabled。
type Noop struct{}

func (Noop) Send(context.Context, Message) error {
	return ErrMailDisabled
}

// ValidateAddress 校验邮箱地址，返回去除显示名后的地址。
func ValidateAddress(address string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil {
		return "", ErrInvalidRecipient
	}
	return parsed.Address, nil
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildMessage(from string, msg Message) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return buf.Bytes()
}
