package service

import (
	"fmt"
	"time"

	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/logger"
)

// NotificationService formats outbound account notifications with the
// institution's branding. Delivery is not wired to a mail transport;
// formatted messages are logged, matching the dry-run transporter of the
// original portal.
type NotificationService struct {
	settingService *SettingService
}

func NewNotificationService(settingService *SettingService) *NotificationService {
	return &NotificationService{settingService: settingService}
}

// SendWelcome formats a welcome message for a newly created user.
func (s *NotificationService) SendWelcome(user *model.User) {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	content := fmt.Sprintf("Welcome %s, your account %q has been created.", name, user.Username)
	logger.Infof("notification for %s: %s", user.Email, s.Format("Welcome", content))
}

// Format wraps content in the branded plain-text template used for all
// outbound notifications.
func (s *NotificationService) Format(subject string, content string) string {
	bankName := s.settingService.GetBankName()
	supportEmail, err := s.settingService.getString("support_email")
	if err != nil {
		supportEmail = defaultValueMap["support_email"]
	}
	return fmt.Sprintf("%s - %s\n\n%s\n\n(c) %d %s | Contact: %s",
		subject, bankName, content, time.Now().Year(), bankName, supportEmail)
}
