// Package adoptions provides the receipt notification mailer.
package adoptions

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

// Mailer holds notification email configuration
type Mailer struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// LoadMailer loads mailer configuration from environment
func LoadMailer() *Mailer {
	return &Mailer{
		SMTPHost:     util.GetEnvDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     util.GetEnvDefault("SMTP_PORT", "587"),
		SMTPUsername: util.GetEnvDefault("SMTP_USERNAME", ""),
		SMTPPassword: util.GetEnvDefault("SMTP_PASSWORD", ""),
		FromEmail:    util.GetEnvDefault("SMTP_FROM_EMAIL", "noreply@grove.local"),
		FromName:     util.GetEnvDefault("SMTP_FROM_NAME", "Grove Tracker"),
	}
}

// Configured reports whether SMTP credentials are present.
func (m *Mailer) Configured() bool {
	return m.SMTPUsername != "" && m.SMTPPassword != ""
}

// receiptEmailData holds data for the receipt email template
type receiptEmailData struct {
	AdopterName    string
	TreeID         string
	LocalName      string
	ScientificName string
	Institution    string
	CO2Kg          float64
	AdoptionID     string
}

// NotifyInstitution sends the adoption notice to the active school accounts
// of the adopted tree's institution. Best effort: lookup and delivery
// failures are logged, never surfaced to the adopter.
func NotifyInstitution(db database.DBConnection, mailer *Mailer, receipt model.AdoptionReceipt) {
	users, err := database.ListUsers(context.Background(), db)
	if err != nil {
		fmt.Printf("Failed to list users for adoption notice: %v\n", err)
		return
	}

	institution := util.NormalizeInstitutionName(receipt.Tree.Institution)
	notified := false
	for _, u := range users {
		if u.Role != model.RoleSchool || !u.IsActive || u.Email == "" {
			continue
		}
		if util.NormalizeInstitutionName(u.Institution) != institution {
			continue
		}
		mailer.SendAdoptionReceipt(u.Email, receipt)
		notified = true
	}
	if !notified { // nobody to mail; keep a console record
		mailer.SendAdoptionReceipt("", receipt)
	}
}

// SendAdoptionReceipt emails the adoption notice to one recipient. Without
// SMTP credentials or a recipient address it prints the receipt to the
// console instead, so local deployments still get a usable record.
func (m *Mailer) SendAdoptionReceipt(to string, receipt model.AdoptionReceipt) {
	if !m.Configured() || to == "" {
		fmt.Printf(`
════════════════════════════════════════════════════════════════
ADOPTION RECEIPT
════════════════════════════════════════════════════════════════

Receipt:     %s
Tree:        %s (%s, %s)
Institution: %s
Adopter:     %s
CO2 so far:  %.2f kg

════════════════════════════════════════════════════════════════
`, receipt.AdoptionID, receipt.TreeID, receipt.Tree.LocalName,
			receipt.Tree.ScientificName, receipt.Tree.Institution,
			receipt.AdopterName, receipt.Tree.CO2Kg)
		return
	}

	data := receiptEmailData{
		AdopterName:    receipt.AdopterName,
		TreeID:         receipt.TreeID,
		LocalName:      receipt.Tree.LocalName,
		ScientificName: receipt.Tree.ScientificName,
		Institution:    receipt.Tree.Institution,
		CO2Kg:          receipt.Tree.CO2Kg,
		AdoptionID:     receipt.AdoptionID,
	}

	subject := fmt.Sprintf("Tree %s was adopted", receipt.TreeID)
	body, err := renderReceiptEmail(data)
	if err != nil {
		fmt.Printf("Failed to render receipt email: %v\n", err)
		return
	}

	if err := m.sendEmail(to, subject, body); err != nil {
		fmt.Printf("Failed to send receipt email to %s: %v\n", to, err)
	}
}

// renderReceiptEmail renders the receipt email template
func renderReceiptEmail(data receiptEmailData) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
		.content { padding: 30px; background-color: #f9f9f9; }
		.info-box {
			background-color: #e8f5e9;
			border-left: 4px solid #4CAF50;
			padding: 15px;
			margin: 20px 0;
		}
		.footer {
			padding: 20px;
			text-align: center;
			color: #666;
			font-size: 12px;
		}
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>One of your trees was adopted!</h1>
		</div>

		<div class="content">
			<p>Hello <strong>{{.Institution}}</strong> team,</p>

			<p><strong>{{.AdopterName}}</strong> just adopted one of your trees:</p>

			<div class="info-box">
				<strong>Receipt:</strong> {{.AdoptionID}}<br>
				<strong>Tree:</strong> {{.TreeID}} ({{.LocalName}}, {{.ScientificName}})<br>
				<strong>CO2 sequestered so far:</strong> {{printf "%.2f" .CO2Kg}} kg
			</div>

			<p>The tree now shows as adopted on the dashboard.</p>
		</div>

		<div class="footer">
			<p>Grove Tracker</p>
		</div>
	</div>
</body>
</html>
`

	t, err := template.New("receipt").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using SMTP
func (m *Mailer) sendEmail(to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", m.SMTPUsername, m.SMTPPassword, m.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.FromName, m.FromEmail, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%s", m.SMTPHost, m.SMTPPort)
	return smtp.SendMail(addr, auth, m.FromEmail, []string{to}, msg)
}
