package notification

// MockNotifier records notifications instead of delivering them.
// Useful for tests and the in-memory demo server.
type MockNotifier struct {
	SentNotifications []NotificationData
	Err               error // returned from Send when set
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData) error {
	if m.Err != nil {
		return m.Err
	}
	m.SentNotifications = append(m.SentNotifications, notification)
	return nil
}
