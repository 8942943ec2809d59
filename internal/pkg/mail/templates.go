package mail

import (
	"bytes"
	"html/template"
)

// EnrollmentData fills the enrollment confirmation email.
type EnrollmentData struct {
	StudentName       string
	ItemType          string
	ItemTitle         string
	MerchantRefNumber string
	Amount            string
}

var enrollmentTemplate = template.Must(template.New("enrollment").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello {{if .StudentName}}{{.StudentName}}{{else}}there{{end}},</p>
<p>your payment of <strong>{{.Amount}} EGP</strong> was received and you are now enrolled in
<strong>{{.ItemTitle}}</strong> ({{.ItemType}}).</p>
<p>Order reference: {{.MerchantRefNumber}}</p>
<p>Happy learning!</p>
</body>
</html>`))

// EnrollmentSubject returns the subject line for an enrollment email.
func EnrollmentSubject(itemTitle string) string {
	return "You are enrolled: " + itemTitle
}

// RenderEnrollment renders the enrollment confirmation body.
func RenderEnrollment(data EnrollmentData) (string, error) {
	var buf bytes.Buffer
	if err := enrollmentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
