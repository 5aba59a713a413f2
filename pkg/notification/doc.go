// Package notification delivers auth-related emails.
//
// A Notifier sends a typed notice (e.g. the one-time passcode email) rendered
// from a registered template. EmailNotifier is the SMTP implementation backed
// by wneessen/go-mail; MockNotifier records sends for tests.
package notification
