package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/logger"
	"github.com/sitepress/internal/mail"
	"gorm.io/gorm"
)

const (
	DefaultNewsletterSubject = "You're Welcome!"
	DefaultNewsletterBody    = "Hello, \n Thank you for registering on our website."
)

// ErrWelcomeMailFailed 表示订阅已保存，但欢迎邮件发送失败。
var ErrWelcomeMailFailed = errors.New("welcome mail could not be sent")

// NewsletterService 处理通讯订阅。
type NewsletterService struct {
	db       *gorm.DB
	sender   mail.Sender
	settings *SystemSettingService
}

// NewNewsletterService 构造 NewsletterService。
func NewNewsletterService(gdb *gorm.DB, sender mail.Sender, settings *SystemSettingService) *NewsletterService {
	if sender == nil {
		sender = mail.Noop{}
	}
	return &NewsletterService{db: gdb, sender: sender, settings: settings}
}

// Subscribe 保存订阅邮箱（重复订阅视为成功），再发送欢迎邮件。
// 未启用邮件时直接返回成功。
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*db.NewsletterSubscription, error) {
	address, err := mail.ValidateAddress(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	address = strings.ToLower(address)

	var subscription db.NewsletterSubscription
	if err := s.db.Where(db.NewsletterSubscription{Email: address}).FirstOrCreate(&subscription).Error; err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	subject, body := DefaultNewsletterSubject, DefaultNewsletterBody
	if s.settings != nil {
		if settings, err := s.settings.GetSettings(); err == nil {
			subject, body = settings.NewsletterSubject, settings.NewsletterBody
		} else {
			logger.Warnw("load newsletter template failed", "error", err)
		}
	}

	err = s.sender.Send(ctx, mail.Message{To: []string{address}, Subject: subject, Body: body})
	switch {
	case err == nil, errors.Is(err, mail.ErrMailDisabled):
		return &subscription, nil
	default:
		logger.Errorw("send welcome mail failed", "email", address, "error", err)
		return &subscription, fmt.Errorf("%w: %v", ErrWelcomeMailFailed, err)
	}
}
