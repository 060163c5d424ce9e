package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/finplan-service/internal/config"
	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendCapacityReport mails a capacity verdict to the given address
func (s *Sender) SendCapacityReport(to string, terms models.LoanTerms, result models.CapacityResult) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Loan capacity report: %s", result.RiskBand)
	e.Text = []byte(CapacityReportBody(terms, result, time.Now()))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send capacity report to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// CapacityReportBody formats the plain-text report
func CapacityReportBody(terms models.LoanTerms, result models.CapacityResult, at time.Time) string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "Here is your loan capacity estimate from %s.\n", at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Terms: %.2f%% p.a. over %d months\n\n", terms.AnnualInterestRatePct, terms.TenureMonths)

	bands := []struct {
		name string
		band models.CapacityBand
	}{
		{"Survival", result.Survival},
		{"Operating", result.Operating},
		{"Stretch", result.Stretch},
	}
	for _, row := range bands {
		if row.band.Installment == 0 {
			fmt.Fprintf(&b, "%-10s not viable at this risk level\n", row.name)
			continue
		}
		fmt.Fprintf(&b, "%-10s installment %.0f, supports a loan of %.0f\n", row.name, row.band.Installment, row.band.LoanPrincipal)
	}

	fmt.Fprintf(&b, "\nRisk band: %s\n", result.RiskBand)
	fmt.Fprintf(&b, "Behaviour score: %d/100\n", result.BehaviourScore)
	fmt.Fprintf(&b, "Cashflow volatility: %.2f\n", result.Volatility)
	fmt.Fprintf(&b, "Working capital need: %.0f (shortfall %.0f)\n", result.WorkingCapitalNeed, result.WorkingCapitalDeficit)
	if result.RiskBand == models.RiskRed {
		b.WriteString("\nCredit at the requested terms is not recommended.\n")
	}
	b.WriteString("\nBest regards,\nFinancial Planning Service")
	return b.String()
}
