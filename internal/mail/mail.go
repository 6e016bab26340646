// Package mail builds report messages with an HTML body and one file
// attachment, and delivers them over SMTP with github.com/wneessen/go-mail.
package mail

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

// Ports used when the server address carries none.
const (
	Port    = 25
	SSLPort = 465
)

// Params describe one delivery. Subject defaults to the report title.
type Params struct {
	Server   string // host or host:port
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string
	User     string // SMTP auth, skipped when empty
	Password string
	SSL      bool // implicit TLS
	Headers  map[string]string
}

// Sender delivers built messages.
type Sender interface {
	Send(ctx context.Context, p Params, msg *gomail.Msg) error
}

// Build assembles the message for p with the file at attachment.
func Build(p Params, attachment, defaultSubject string) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(p.From); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if len(p.To) > 0 {
		if err := m.To(p.To...); err != nil {
			return nil, fmt.Errorf("mail: to: %w", err)
		}
	}
	if len(p.Cc) > 0 {
		if err := m.Cc(p.Cc...); err != nil {
			return nil, fmt.Errorf("mail: cc: %w", err)
		}
	}
	if len(p.Bcc) > 0 {
		if err := m.Bcc(p.Bcc...); err != nil {
			return nil, fmt.Errorf("mail: bcc: %w", err)
		}
	}
	if len(p.To)+len(p.Cc)+len(p.Bcc) == 0 {
		return nil, fmt.Errorf("mail: no recipients")
	}
	subject := p.Subject
	if subject == "" {
		subject = defaultSubject
	}
	m.Subject(subject)
	for k, v := range p.Headers {
		m.SetGenHeader(gomail.Header(k), v)
	}
	m.SetBodyString(gomail.TypeTextHTML, p.Body)
	if attachment != "" {
		m.AttachFile(attachment)
	}
	return m, nil
}

// SMTP sends each message in its own synchronous session. Without SSL the
// session upgrades with STARTTLS when the server offers it.
type SMTP struct{}

// Send implements Sender.
func (SMTP) Send(ctx context.Context, p Params, msg *gomail.Msg) error {
	host, port, err := splitServer(p.Server, p.SSL)
	if err != nil {
		return err
	}
	opts := []gomail.Option{gomail.WithPort(port)}
	if p.SSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if p.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(p.User),
			gomail.WithPassword(p.Password),
		)
	}
	c, err := gomail.NewClient(host, opts...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send via %s: %w", p.Server, err)
	}
	return nil
}

func splitServer(server string, ssl bool) (string, int, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", 0, fmt.Errorf("mail: server must not be empty")
	}
	def := Port
	if ssl {
		def = SSLPort
	}
	host, p, err := net.SplitHostPort(server)
	if err != nil {
		return server, def, nil
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("mail: server port %q: %w", p, err)
	}
	return host, port, nil
}
