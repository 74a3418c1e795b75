package auth

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/mail"
	"net/url"
	"os"

	"github.com/dajohi/goemail"
	goerrors "github.com/goliatone/go-errors"
)

// SMTPConfig carries the relay credentials. Host is host:port.
type SMTPConfig struct {
	Host        string
	User        string
	Password    string
	MailAddress string
	MailName    string
	CertPath    string
	SkipVerify  bool
}

// SMTPNotifier delivers account emails through an SMTPS relay.
type SMTPNotifier struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
	logger      Logger
}

var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier builds the relay client. When any credential is missing
// mail is considered disabled and every send becomes a logged no-op.
func NewSMTPNotifier(cfg SMTPConfig, logger Logger) (*SMTPNotifier, error) {
	if logger == nil {
		logger = defLogger{}
	}

	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		logger.Info("mail: DISABLED")
		return &SMTPNotifier{
			disabled: true,
			logger:   logger,
		}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", cfg.User, cfg.Password, cfg.Host)
	u, err := url.Parse(h)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid mail host")
	}

	a, err := mail.ParseAddress(cfg.MailAddress)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid mail address")
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
	}
	if !cfg.SkipVerify && cfg.CertPath != "" {
		cert, err := os.ReadFile(cfg.CertPath)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read mail cert")
		}
		certPool, err := x509.SystemCertPool()
		if err != nil {
			certPool = x509.NewCertPool()
		}
		certPool.AppendCertsFromPEM(cert)
		tlsConfig.RootCAs = certPool
		tlsConfig.InsecureSkipVerify = false
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to initialize smtp client")
	}

	name := cfg.MailName
	if name == "" {
		name = a.Name
	}

	return &SMTPNotifier{
		smtp:        smtp,
		mailName:    name,
		mailAddress: a.Address,
		logger:      logger,
	}, nil
}

func (n *SMTPNotifier) sendTo(subject, body, recipient string) error {
	if n.disabled {
		n.logger.Info("mail disabled, dropping message", "subject", subject, "to", recipient)
		return nil
	}

	msg := goemail.NewMessage(n.mailAddress, subject, body)
	msg.SetName(n.mailName)
	msg.AddBCC(recipient)

	return n.smtp.Send(msg)
}

func (n *SMTPNotifier) SendVerification(ctx context.Context, email, rawToken, link string) error {
	body := fmt.Sprintf(verificationEmailBody, link)
	return n.sendTo("Verify Your Email Address", body, email)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, email, rawToken, link string) error {
	body := fmt.Sprintf(passwordResetEmailBody, link)
	return n.sendTo("Reset Your Password", body, email)
}

func (n *SMTPNotifier) SendWelcome(ctx context.Context, email, username string) error {
	body := fmt.Sprintf(welcomeEmailBody, username)
	return n.sendTo("Welcome Aboard", body, email)
}

const verificationEmailBody = `Thanks for signing up.

Click the link below to verify your email address:

%s

The link expires in 24 hours. If you did not create an account, you can
safely ignore this email.
`

const passwordResetEmailBody = `A password reset was requested for your account.

Click the link below to choose a new password:

%s

The link expires in 1 hour. If you did not request a reset, you can
safely ignore this email and your password will remain unchanged.
`

const welcomeEmailBody = `Hi %s,

Your email has been verified and your account is ready to use.
`
