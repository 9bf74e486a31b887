package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/logger"
	"github.com/sitepress/internal/mail"
	"github.com/sitepress/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	// ErrInvalidEmail 表示填写的邮箱无法解析。
	ErrInvalidEmail = errors.New("invalid email address")
)

// MessageInput 为联系表单提交的字段，全部可为空。
type MessageInput struct {
	Name    string
	Subject string
	Email   string
	Message string
}

// MessageListResult 为后台留言列表。
type MessageListResult struct {
	Messages   []db.ContactMessage
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// MessageService 保存前台留言，留言一经创建不再修改。
type MessageService struct {
	db       *gorm.DB
	sender   mail.Sender
	settings *SystemSettingService
}

// NewMessageService 构造 MessageService。sender 为空时不发送通知。
func NewMessageService(gdb *gorm.DB, sender mail.Sender, settings *SystemSettingService) *MessageService {
	return &MessageService{db: gdb, sender: sender, settings: settings}
}

// Submit 保存一条留言，随后尽力通知站点配置的收件人。通知失败不影响结果。
func (s *MessageService) Submit(ctx context.Context, input MessageInput) (*db.ContactMessage, error) {
	message := db.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Subject: strings.TrimSpace(input.Subject),
		Email:   strings.TrimSpace(input.Email),
		Message: strings.TrimSpace(input.Message),
	}
	if message.Email != "" {
		address, err := mail.ValidateAddress(message.Email)
		if err != nil {
			return nil, ErrInvalidEmail
		}
		message.Email = address
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	s.notify(ctx, &message)
	return &message, nil
}

func (s *MessageService) notify(ctx context.Context, message *db.ContactMessage) {
	if s.sender == nil || s.settings == nil {
		return
	}
	settings, err := s.settings.GetSettings()
	if err != nil {
		logger.Warnw("load settings for contact notification failed", "message_id", message.ID, "error", err)
		return
	}
	if settings.ContactRecipient == "" {
		return
	}

	subject := message.Subject
	if subject == "" {
		subject = "New contact message"
	}
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", message.Name, message.Email, message.Message)
	err = s.sender.Send(ctx, mail.Message{To: []string{settings.ContactRecipient}, Subject: subject, Body: body})
	if err != nil && !errors.Is(err, mail.ErrMailDisabled) {
		logger.Warnw("send contact notification failed", "message_id", message.ID, "error", err)
	}
}

// List 按创建时间倒序分页返回留言。
func (s *MessageService) List(page, perPage int) (*MessageListResult, error) {
	result := &MessageListResult{}
	if err := s.db.Model(&db.ContactMessage{}).Count(&result.Total).Error; err != nil {
		return nil, err
	}
	result.Page, result.PerPage, result.TotalPages = paginate(page, perPage, 20, result.Total)

	query := repository.ApplyPagination(s.db.Order("created_at desc").Order("id desc"), result.Page, result.PerPage)
	if err := query.Find(&result.Messages).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Get 按 ID 读取留言。
func (s *MessageService) Get(id uint) (*db.ContactMessage, error) {
	var message db.ContactMessage
	if err := s.db.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}
