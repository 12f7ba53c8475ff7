package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"patta-backend/internal/shared/telemetry"
)

// Mailer sends lifecycle notification emails. Delivery is strictly
// fire-and-forget: failures are logged and never surfaced to callers, so a
// broken SMTP relay can never block a state change. When SMTP is not
// configured, messages are logged instead of sent.
type Mailer struct {
	dialer       *gomail.Dialer
	from         string
	supportEmail string
	appName      string
}

// NewMailer builds a Mailer. Host and user may be empty, in which case the
// mailer runs in log-only mode.
func NewMailer(host, port, user, password, supportEmail, appName string) *Mailer {
	m := &Mailer{
		from:         user,
		supportEmail: supportEmail,
		appName:      appName,
	}
	if strings.TrimSpace(host) != "" && strings.TrimSpace(user) != "" {
		p, err := strconv.Atoi(strings.TrimSpace(port))
		if err != nil || p <= 0 {
			p = 587
		}
		m.dialer = gomail.NewDialer(host, p, user, password)
	} else {
		telemetry.Info("notify.log_only", map[string]any{
			"reason": "smtp not configured, emails will be logged",
		})
	}
	return m
}

// NGORegistration notifies the support address that a new NGO awaits approval.
func (m *Mailer) NGORegistration(email, organization, district string) {
	body := fmt.Sprintf(
		"A new NGO has registered on the %s and requires approval.\n\nEmail: %s\nOrganization: %s\nDistrict: %s\n\nPlease log in to review this registration.",
		m.appName, email, valueOr(organization, "Not provided"), valueOr(district, "Not provided"),
	)
	m.send(m.supportEmail, "New NGO Registration - Approval Required", body)
}

// NGOApproved welcomes a newly approved NGO.
func (m *Mailer) NGOApproved(email, name string) {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour NGO registration has been approved for the %s. You can now log in, view assigned tasks and submit reports.",
		valueOr(name, email), m.appName,
	)
	m.send(email, "NGO Registration Approved", body)
}

// NGORejected informs an NGO that its registration was declined.
func (m *Mailer) NGORejected(email, name, reason string) {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour NGO registration on the %s was not approved.\nReason: %s",
		valueOr(name, email), m.appName, valueOr(reason, "Not specified"),
	)
	m.send(email, "NGO Registration Status - Action Required", body)
}

// AssignmentCreated notifies an NGO of new field verification work.
func (m *Mailer) AssignmentCreated(ngoEmail, title, district string, deadline time.Time) {
	body := fmt.Sprintf(
		"A new field verification assignment has been created for your organization.\n\nTitle: %s\nDistrict: %s\nDeadline: %s\n\nPlease log in to view the full instructions.",
		title, district, deadline.Format("02 Jan 2006"),
	)
	m.send(ngoEmail, "New Field Verification Assignment", body)
}

// AssignmentCompleted notifies the ministry that an assignment was completed.
func (m *Mailer) AssignmentCompleted(title, ngoEmail string) {
	body := fmt.Sprintf(
		"Assignment %q has been marked completed by %s.",
		title, ngoEmail,
	)
	m.send(m.supportEmail, "Assignment Completed", body)
}

// ReportSubmitted notifies the ministry that a verification report arrived.
func (m *Mailer) ReportSubmitted(title, ngoEmail string) {
	body := fmt.Sprintf(
		"A verification report for assignment %q was submitted by %s. Please log in to review it.",
		title, ngoEmail,
	)
	m.send(m.supportEmail, "Verification Report Submitted", body)
}

func (m *Mailer) send(to, subject, body string) {
	if m == nil || strings.TrimSpace(to) == "" {
		return
	}

	if m.dialer == nil {
		telemetry.Info("notify.email", map[string]any{
			"to":      to,
			"subject": subject,
			"body":    body,
		})
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.appName, m.from))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		telemetry.Error("notify.send_failed", map[string]any{
			"to":      to,
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
