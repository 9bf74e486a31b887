package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/mail"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSiteName 在未配置站点名称时使用。
const DefaultSiteName = "Sitepress"

// SystemSettings 描述后台可配置的系统信息。
type SystemSettings struct {
	SiteName          string
	SiteTagline       string
	ContactRecipient  string
	NewsletterSubject string
	NewsletterBody    string
}

// SystemSettingsInput 用于更新系统设置。
type SystemSettingsInput struct {
	SiteName          string
	SiteTagline       string
	ContactRecipient  string
	NewsletterSubject string
	NewsletterBody    string
}

// ErrContactRecipientInvalid 表示留言通知邮箱格式错误。
var ErrContactRecipientInvalid = errors.New("contact recipient email is invalid")

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeySiteTagline,
	db.SettingKeyContactRecipient,
	db.SettingKeyNewsletterSubject,
	db.SettingKeyNewsletterBody,
}

func defaultSettings() SystemSettings {
	return SystemSettings{
		SiteName:          DefaultSiteName,
		NewsletterSubject: DefaultNewsletterSubject,
		NewsletterBody:    DefaultNewsletterBody,
	}
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := defaultSettings()

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		switch record.Key {
		case db.SettingKeySiteName:
			if value != "" {
				result.SiteName = value
			}
		case db.SettingKeySiteTagline:
			result.SiteTagline = value
		case db.SettingKeyContactRecipient:
			result.ContactRecipient = value
		case db.SettingKeyNewsletterSubject:
			if value != "" {
				result.NewsletterSubject = value
			}
		case db.SettingKeyNewsletterBody:
			if value != "" {
				result.NewsletterBody = record.Value
			}
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写的站点名称与邮件模板回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	defaults := defaultSettings()
	sanitized := SystemSettings{
		SiteName:          strings.TrimSpace(input.SiteName),
		SiteTagline:       strings.TrimSpace(input.SiteTagline),
		ContactRecipient:  strings.TrimSpace(input.ContactRecipient),
		NewsletterSubject: strings.TrimSpace(input.NewsletterSubject),
		NewsletterBody:    input.NewsletterBody,
	}

	if sanitized.SiteName == "" {
		sanitized.SiteName = defaults.SiteName
	}
	if sanitized.NewsletterSubject == "" {
		sanitized.NewsletterSubject = defaults.NewsletterSubject
	}
	if strings.TrimSpace(sanitized.NewsletterBody) == "" {
		sanitized.NewsletterBody = defaults.NewsletterBody
	}
	if sanitized.ContactRecipient != "" {
		address, err := mail.ValidateAddress(sanitized.ContactRecipient)
		if err != nil {
			return SystemSettings{}, ErrContactRecipientInvalid
		}
		sanitized.ContactRecipient = address
	}

	values := map[string]string{
		db.SettingKeySiteName:          sanitized.SiteName,
		db.SettingKeySiteTagline:       sanitized.SiteTagline,
		db.SettingKeyContactRecipient:  sanitized.ContactRecipient,
		db.SettingKeyNewsletterSubject: sanitized.NewsletterSubject,
		db.SettingKeyNewsletterBody:    sanitized.NewsletterBody,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
