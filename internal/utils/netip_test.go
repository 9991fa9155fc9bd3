package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "198.51.100.4:5123", want: "198.51.100.4"},
		{name: "ipv6 remote", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "proxy headers ignored", remote: "10.0.0.1:80", headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, want: "10.0.0.1"},
		{name: "cloudflare first", remote: "10.0.0.1:80", trustProxy: true, headers: map[string]string{"CF-Connecting-IP": "203.0.113.1", "X-Forwarded-For": "203.0.113.9"}, want: "203.0.113.1"},
		{name: "left-most forwarded", remote: "10.0.0.1:80", trustProxy: true, headers: map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.2"}, want: "203.0.113.9"},
		{name: "real ip", remote: "10.0.0.1:80", trustProxy: true, headers: map[string]string{"X-Real-IP": "203.0.113.5"}, want: "203.0.113.5"},
		{name: "no headers", remote: "10.0.0.1:80", trustProxy: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.168.1.10", " ", "not-an-ip", "2001:db8::/32"})
	if m.IsEmpty() {
		t.Fatal("IsEmpty() = true, want false")
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{ip: "10.1.2.3", want: true},
		{ip: "192.168.1.10", want: true},
		{ip: "192.168.1.11", want: false},
		{ip: "::ffff:10.0.0.1", want: true},
		{ip: "2001:db8::5", want: true},
		{ip: "garbage", want: false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("NewIPMatcher(nil).IsEmpty() = false, want true")
	}
}
