// Package ldap implements the "ldap" directory manager on top of
// github.com/go-ldap/ldap/v3.
package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"reports/internal/dataset"
	"reports/internal/storage"
)

// Ports used for plain and SSL connections.
const (
	Port    = 389
	SSLPort = 636
)

const dialTimeout = 10 * time.Second

// Verbose logs one line per search.
var Verbose bool

// Conn is the subset of *ldap.Conn the manager uses. Unbind also closes
// the connection.
type Conn interface {
	Bind(username, password string) error
	Unbind() error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
}

// Server describes how to reach a directory.
type Server struct {
	Host string
	SSL  bool // ldaps:// on port 636
	TLS  bool // StartTLS before binding; ignored with SSL
}

// Dialer opens an unbound connection to s.
type Dialer func(ctx context.Context, s Server) (Conn, error)

// Manager is a bound directory connection.
type Manager struct {
	server Server
	dial   Dialer
	conn   Conn
}

func init() {
	storage.Register("ldap", func(ctx context.Context, cfg storage.Config) (storage.Manager, error) {
		o := cfg.Options
		s := Server{
			Host: o.String("server", o.String("host", "")),
			SSL:  o.Bool("ssl", false),
			TLS:  o.Bool("tls", true),
		}
		return Open(ctx, s, o.String("username", o.String("user", "")), o.String("password", ""), Dial)
	})
}

// Dial connects to s with go-ldap.
func Dial(ctx context.Context, s Server) (Conn, error) {
	scheme, port := "ldap", Port
	if s.SSL {
		scheme, port = "ldaps", SSLPort
	}
	addr := fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(s.Host, strconv.Itoa(port)))
	tlsConf := &tls.Config{ServerName: s.Host}
	d := &net.Dialer{Timeout: dialTimeout}
	if deadline, ok := ctx.Deadline(); ok {
		d.Deadline = deadline
	}
	c, err := ldap.DialURL(addr, ldap.DialWithDialer(d), ldap.DialWithTLSConfig(tlsConf))
	if err != nil {
		return nil, err
	}
	if s.TLS && !s.SSL {
		if err := c.StartTLS(tlsConf); err != nil {
			c.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	return c, nil
}

// Open dials the server and binds as username.
func Open(ctx context.Context, s Server, username, password string, dial Dialer) (*Manager, error) {
	if strings.TrimSpace(s.Host) == "" {
		return nil, fmt.Errorf("ldap: server option must not be empty")
	}
	m := &Manager{server: s, dial: dial}
	if err := m.bind(ctx, username, password); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) bind(ctx context.Context, username, password string) error {
	c, err := m.dial(ctx, m.server)
	if err != nil {
		return fmt.Errorf("ldap: dial %s: %w", m.server.Host, err)
	}
	if err := c.Bind(username, password); err != nil {
		c.Unbind()
		return fmt.Errorf("ldap: bind %s: %w", username, err)
	}
	m.conn = c
	return nil
}

// Kind implements storage.Manager.
func (m *Manager) Kind() string { return "ldap" }

// Close implements storage.Manager.
func (m *Manager) Close() error { return m.Unbind() }

func (m *Manager) String() string {
	return fmt.Sprintf("ldap server=%s ssl=%t tls=%t", m.server.Host, m.server.SSL, m.server.TLS)
}

// Rebind drops the current connection and binds again as username.
func (m *Manager) Rebind(ctx context.Context, username, password string) error {
	if err := m.Unbind(); err != nil {
		return err
	}
	return m.bind(ctx, username, password)
}

// Unbind closes the connection. Further queries fail until Rebind.
func (m *Manager) Unbind() error {
	if m.conn == nil {
		return nil
	}
	c := m.conn
	m.conn = nil
	if err := c.Unbind(); err != nil {
		return fmt.Errorf("ldap: unbind: %w", err)
	}
	return nil
}

// Query runs a subtree search under base. The result has one column per
// requested attribute: single values are strings, multi-valued attributes
// are []string and absent ones are nil. Entries carrying none of the
// attributes are skipped.
func (m *Manager) Query(ctx context.Context, base, filter string, attributes []string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.conn == nil {
		return nil, fmt.Errorf("ldap: query on unbound connection")
	}
	req := ldap.NewSearchRequest(
		base, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter, attributes, nil,
	)
	res, err := m.conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ldap: search %s %s: %w", base, filter, err)
	}
	d := &dataset.Dataset{}
	if err := d.SetHeaders(attributes); err != nil {
		return nil, err
	}
	for _, e := range res.Entries {
		if len(e.Attributes) == 0 {
			continue
		}
		row := make(dataset.Row, len(attributes))
		for i, a := range attributes {
			switch v := e.GetAttributeValues(a); len(v) {
			case 0:
			case 1:
				row[i] = v[0]
			default:
				row[i] = v
			}
		}
		if err := d.Append(row); err != nil {
			return nil, err
		}
	}
	if Verbose {
		log.Printf("ldap: search %s %s: %d entries", base, filter, d.Len())
	}
	return d, nil
}
