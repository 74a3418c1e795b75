package auth

import "context"

// NoopNotifier drops every message. Useful for tests and for deployments
// that have not wired an SMTP relay yet.
type NoopNotifier struct{}

var _ Notifier = (*NoopNotifier)(nil)

func (NoopNotifier) SendVerification(ctx context.Context, email, rawToken, link string) error {
	return nil
}

func (NoopNotifier) SendPasswordReset(ctx context.Context, email, rawToken, link string) error {
	return nil
}

func (NoopNotifier) SendWelcome(ctx context.Context, email, username string) error {
	return nil
}

// LoggingNotifier writes the outbound message to the logger instead of
// sending it. Handy in local development where the links need to be
// clickable from the console.
type LoggingNotifier struct {
	Logger Logger
}

var _ Notifier = (*LoggingNotifier)(nil)

func (n LoggingNotifier) logger() Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return defLogger{}
}

func (n LoggingNotifier) SendVerification(ctx context.Context, email, rawToken, link string) error {
	n.logger().Info("verification email", "to", email, "link", link)
	return nil
}

func (n LoggingNotifier) SendPasswordReset(ctx context.Context, email, rawToken, link string) error {
	n.logger().Info("password reset email", "to", email, "link", link)
	return nil
}

func (n LoggingNotifier) SendWelcome(ctx context.Context, email, username string) error {
	n.logger().Info("welcome email", "to", email, "username", username)
	return nil
}
