// Package discovery advertises the host on the local network over multicast
// DNS and resolves ".local" host names for the pad.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/pion/mdns"
	"golang.org/x/net/ipv4"
)

// DefaultName is the host name advertised when none is configured.
const DefaultName = "remote-mouse.local"

// DefaultTimeout bounds one lookup when the caller's context has no deadline.
const DefaultTimeout = 3 * time.Second

// ErrNotLocal is returned for names outside the .local domain.
var ErrNotLocal = errors.New("discovery: name must end in .local")

// NormalizeName lowercases name, drops a trailing dot and checks the domain.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	if !IsLocal(name) || name == "local" {
		return "", fmt.Errorf("%w: %q", ErrNotLocal, name)
	}
	return name, nil
}

// IsLocal reports whether host is a multicast DNS name.
func IsLocal(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return host == "local" || strings.HasSuffix(host, ".local")
}

// listen joins the mDNS multicast group and starts a responder for cfg.
func listen(cfg *mdns.Config) (*mdns.Conn, error) {
	addr, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddress)
	if err != nil {
		return nil, err
	}
	l, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("mdns listen: %w", err)
	}
	conn, err := mdns.Server(ipv4.NewPacketConn(l), cfg)
	if err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	return conn, nil
}

// Advertiser answers mDNS queries for the host name until closed.
type Advertiser struct {
	name string
	conn *mdns.Conn
	log  *slog.Logger
}

// Advertise starts answering queries for name with this machine's address.
func Advertise(name string, logger *slog.Logger) (*Advertiser, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := listen(&mdns.Config{LocalNames: []string{name}})
	if err != nil {
		return nil, err
	}
	logger.Info("mdns: advertising", "name", name)
	return &Advertiser{name: name, conn: conn, log: logger}, nil
}

// Name returns the advertised host name.
func (a *Advertiser) Name() string {
	return a.name
}

// Close stops answering queries.
func (a *Advertiser) Close() error {
	a.log.Info("mdns: stopped advertising", "name", a.name)
	return a.conn.Close()
}

// Resolver looks up .local names over mDNS and passes other hosts through.
type Resolver struct {
	// Timeout bounds a lookup when ctx has no deadline; zero uses DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// ResolveHost returns an IP for a .local host, or host unchanged.
func (r *Resolver) ResolveHost(ctx context.Context, host string) (string, error) {
	if !IsLocal(host) || net.ParseIP(host) != nil {
		return host, nil
	}
	name, err := NormalizeName(host)
	if err != nil {
		return "", err
	}
	if _, ok := ctx.Deadline(); !ok {
		timeout := r.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := listen(&mdns.Config{})
	if err != nil {
		return "", err
	}
	defer conn.Close()

	_, src, err := conn.Query(ctx, name)
	if err != nil {
		return "", fmt.Errorf("mdns query %s: %w", name, err)
	}
	ip := addrIP(src)
	if ip == nil {
		return "", fmt.Errorf("mdns query %s: no address in %v", name, src)
	}
	r.logger().Debug("mdns: resolved", "name", name, "ip", ip.String())
	return ip.String(), nil
}

// logger returns the configured logger or the default one.
func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// addrIP extracts the IP of an answer source address.
func addrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case nil:
		return nil
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	}
	host := addr.String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
