package notification

// NoticeType identifies a notification template (e.g. "otp_code").
type NoticeType string

const (
	// OTPCodeNotice is the one-time passcode login email.
	OTPCodeNotice NoticeType = "otp_code"
)

// NoticeTemplate holds the subject and body templates for a notice.
// Text and Html are Go templates executed with NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: overrides the template subject
	Data    map[string]string // Template data (e.g., "Code", "ExpiryMinutes")
}

// Notifier delivers a notification of the given type.
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData) error
}

// DefaultTemplates returns the built-in notice templates.
func DefaultTemplates() map[NoticeType]NoticeTemplate {
	return map[NoticeType]NoticeTemplate{
		OTPCodeNotice: {
			Subject: "Your login code",
			Text:    "Your login code is {{.Code}}. It expires in {{.ExpiryMinutes}} minutes.",
			Html: `<p>Your login code is <strong>{{.Code}}</strong>.</p>` +
				`<p>It expires in {{.ExpiryMinutes}} minutes. If you did not request this code, you can ignore this email.</p>`,
		},
	}
}
