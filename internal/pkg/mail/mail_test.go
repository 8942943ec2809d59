package mail

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEnrollmentEscapes(t *testing.T) {
	body, err := RenderEnrollment(EnrollmentData{
		StudentName:       "Sara <script>",
		ItemType:          "COURSE",
		ItemTitle:         "Go Basics",
		MerchantRefNumber: "S1-abc",
		Amount:            "100.00",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Go Basics")
	assert.Contains(t, body, "100.00 EGP")
	assert.Contains(t, body, "S1-abc")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Sara &lt;script&gt;")
}

func TestSMTPMailerRetries(t *testing.T) {
	calls := 0
	m := &SMTPMailer{
		Host:     "smtp.test",
		Port:     "25",
		Sender:   "no-reply@learnfox.test",
		Attempts: 3,
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			calls++
			assert.Equal(t, "smtp.test:25", addr)
			assert.Equal(t, []string{"sara@learnfox.test"}, to)
			assert.Contains(t, string(msg), "Subject: Hi\r\n")
			if calls < 2 {
				return errors.New("421 try again")
			}
			return nil
		},
	}

	require.NoError(t, m.Send("sara@learnfox.test", "Hi", "<p>hi</p>"))
	assert.Equal(t, 2, calls)
}

func TestSMTPMailerRequiresHost(t *testing.T) {
	m := &SMTPMailer{}
	assert.Error(t, m.Send("a@b.c", "s", "b"))
}
