package notifier

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/tabor-plzen/camp-api/internal/models"
)

// MailConfig holds the SMTP collaborator settings. An empty Host means mail
// is not configured for this environment; messages are logged instead so the
// flow keeps working in development.
type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	GalleryURL string
}

type MailNotifier struct {
	cfg    MailConfig
	logger *zap.Logger
}

func NewMailNotifier(cfg MailConfig, logger *zap.Logger) *MailNotifier {
	return &MailNotifier{cfg: cfg, logger: logger}
}

func (n *MailNotifier) NotifyRegistration(reg models.Registration) error {
	subject := fmt.Sprintf("Registration confirmed: %s", reg.Camp.Name)
	body := fmt.Sprintf(
		"<h2>Registration received</h2>"+
			"<p>%s %s is registered for <b>%s</b> (%s &ndash; %s).</p>"+
			"<p>Your access code: <b>%s</b></p>"+
			"<p>Camp photos and live updates: <a href=\"%s/%s\">%s/%s</a></p>",
		reg.ChildName, reg.ChildSurname,
		reg.Camp.Name,
		reg.Camp.StartDate.Format("2006-01-02"), reg.Camp.EndDate.Format("2006-01-02"),
		reg.AccessCode,
		n.cfg.GalleryURL, reg.AccessCode, n.cfg.GalleryURL, reg.AccessCode,
	)
	return n.send(reg.ParentEmail, subject, body)
}

func (n *MailNotifier) NotifyPayment(reg models.Registration, payment models.Payment) error {
	subject := fmt.Sprintf("Payment received: %s", reg.Camp.Name)
	body := fmt.Sprintf(
		"<h2>Payment %s</h2>"+
			"<p>Amount: %d %s</p>"+
			"<p>Method: %s</p>"+
			"<p>Transaction: %s</p>",
		payment.Status, payment.Amount, payment.Currency, payment.Method, payment.TransactionID,
	)
	return n.send(reg.ParentEmail, subject, body)
}

func (n *MailNotifier) send(to, subject, body string) error {
	if n.cfg.Host == "" {
		n.logger.Info("mail not configured, logging instead",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
