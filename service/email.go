package service

import (
	"fmt"

	"ahorra/config"
	"ahorra/models"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBudgetAlertEmail 发送预算超支提醒邮件
func (s *EmailService) SendBudgetAlertEmail(toEmail, name string, budget *models.Budget) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 EMAIL_ENABLED=true")
	}

	subject := "【Ahorra】预算超支提醒"
	body := s.generateBudgetAlertBody(name, budget)

	return s.sendEmail(toEmail, subject, body)
}

// generateBudgetAlertBody 生成超支提醒邮件内容
func (s *EmailService) generateBudgetAlertBody(name string, budget *models.Budget) string {
	overspent := budget.Consumed - budget.LimitAmount
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #ef4444, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .stat-box { background: linear-gradient(135deg, #fef2f2, #fee2e2); border: 2px dashed #ef4444; border-radius: 12px; padding: 30px; text-align: center; margin: 30px 0; }
        .stat { font-size: 28px; font-weight: bold; color: #b91c1c; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 Ahorra 记账</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>您在 <strong>%d年%d月</strong> 的「%s」类别预算已经超支：</p>
            <div class="stat-box">
                <span class="stat">超支 %.2f 元</span>
            </div>
            <p>该类别本月上限 %.2f 元，目前累计支出 %.2f 元。</p>
            <div class="warning">
                <p>⚠️ 建议打开 App 查看本月消费明细，合理规划剩余支出。</p>
            </div>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© Ahorra - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, name, budget.Year, budget.Month, budget.Category, overspent, budget.LimitAmount, budget.Consumed)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【Ahorra】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明邮件服务配置正确。</p>
    <p style="color: #666;">—— Ahorra 记账</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
