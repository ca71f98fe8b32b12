package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/notification/entity"
)

// EmailDispatcher delivers contract mail. Both calls are fire-and-forget and
// report success as a bool.
type EmailDispatcher interface {
	SendContractEmail(ctx context.Context, msg entity.ContractEmail) bool
	SendContractResponseNotification(ctx context.Context, msg entity.ContractResponse) bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPDispatcher struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg, send: smtp.SendMail}
}

func (d *SMTPDispatcher) SendContractEmail(ctx context.Context, msg entity.ContractEmail) bool {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\nPlease review your contract for the following dates:\r\n\r\n", msg.MusicianName)
	for _, dt := range msg.Dates {
		fmt.Fprintf(&b, "  %s  %s-%s  %s  %s\r\n", utils.FormatDate(dt.Date), dt.StartTime, dt.EndTime, dt.Venue, formatAmount(dt.Fee))
	}
	fmt.Fprintf(&b, "\r\nTotal: %s\r\n\r\nSign or reject here: %s\r\n", formatAmount(msg.TotalFee), msg.ResponseURL)

	return d.deliver(msg.To, msg.Subject, b.String())
}

func (d *SMTPDispatcher) SendContractResponseNotification(ctx context.Context, msg entity.ContractResponse) bool {
	body := fmt.Sprintf("%s has %s %s.\r\n", msg.MusicianName, pastTense(msg.Action), msg.Contract)
	if msg.Comments != "" {
		body += "\r\nComments:\r\n" + msg.Comments + "\r\n"
	}
	return d.deliver(msg.To, "Contract "+pastTense(msg.Action)+": "+msg.MusicianName, body)
}

func (d *SMTPDispatcher) deliver(to, subject, body string) bool {
	if to == "" {
		logger.Warn("SMTPDispatcher:Deliver:NoRecipient", "subject", subject)
		return false
	}

	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	msg := "From: " + d.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" + body

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	if err := d.send(addr, auth, d.cfg.From, []string{to}, []byte(msg)); err != nil {
		logger.Error("SMTPDispatcher:Deliver:Error", "to", to, "subject", subject, "error", err)
		return false
	}
	logger.Info("SMTPDispatcher:Deliver:Success", "to", to, "subject", subject)
	return true
}

// MockDispatcher stands in when SMTP is not configured. It logs and succeeds.
type MockDispatcher struct{}

func (MockDispatcher) SendContractEmail(ctx context.Context, msg entity.ContractEmail) bool {
	logger.Info("MockDispatcher:SendContractEmail:mock send",
		"to", msg.To,
		"musician", msg.MusicianName,
		"dates", len(msg.Dates),
		"response_url", msg.ResponseURL,
	)
	return true
}

func (MockDispatcher) SendContractResponseNotification(ctx context.Context, msg entity.ContractResponse) bool {
	logger.Info("MockDispatcher:SendContractResponseNotification:mock send",
		"musician", msg.MusicianName,
		"contract", msg.Contract,
		"action", msg.Action,
	)
	return true
}

func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

func pastTense(action string) string {
	switch action {
	case "sign":
		return "signed"
	case "reject":
		return "rejected"
	default:
		return action
	}
}
