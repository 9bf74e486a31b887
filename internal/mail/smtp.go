package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

const dialTimeout = 10 * time.Second

// SMTPSender 通过 SMTP 发送邮件，支持明文、STARTTLS 与 SSL 三种连接方式。
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled {
		return ErrMailDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrMailNotConfigured
	}
	if len(msg.To) == 0 {
		return ErrInvalidRecipient
	}

	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		address, err := ValidateAddress(to)
		if err != nil {
			return err
		}
		recipients = append(recipients, address)
	}
	msg.To = recipients

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	payload := buildMessage(from, msg)

	client, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer client.Close()

	if err := s.send(client, recipients, payload); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	dialer := &net.Dialer{Timeout: dialTimeout}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.UseSSL {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.cfg.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if !s.cfg.UseSSL && s.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

func (s *SMTPSender) send(client *smtp.Client, to []string, payload []byte) error {
	if s.cfg.Username != "" || s.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
