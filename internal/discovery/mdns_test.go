package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
)

// TestNormalizeName verifies case, trailing dots and the domain check.
func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "Remote-Mouse.local.", want: "remote-mouse.local"},
		{in: " desk.local ", want: "desk.local"},
		{in: "remote-mouse.lan", err: true},
		{in: "local", err: true},
		{in: "", err: true},
	}
	for _, tc := range cases {
		got, err := NormalizeName(tc.in)
		if tc.err {
			if !errors.Is(err, ErrNotLocal) {
				t.Fatalf("NormalizeName(%q): expected ErrNotLocal, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

// TestResolveHost_PassesThroughNonLocal verifies ordinary hosts never touch the network.
func TestResolveHost_PassesThroughNonLocal(t *testing.T) {
	r := &Resolver{}
	for _, host := range []string{"127.0.0.1", "example.com", "::1"} {
		got, err := r.ResolveHost(context.Background(), host)
		if err != nil || got != host {
			t.Fatalf("ResolveHost(%q) = %q, %v", host, got, err)
		}
	}
}

// TestAddrIP verifies each answer address shape yields its IP.
func TestAddrIP(t *testing.T) {
	want := net.ParseIP("192.168.1.20")
	addrs := []net.Addr{
		&net.UDPAddr{IP: want, Port: 5353},
		&net.IPAddr{IP: want},
		&net.TCPAddr{IP: want, Port: 80},
	}
	for _, a := range addrs {
		if got := addrIP(a); !got.Equal(want) {
			t.Fatalf("addrIP(%v) = %v", a, got)
		}
	}
	if addrIP(nil) != nil {
		t.Fatalf("expected nil for nil addr")
	}
}
