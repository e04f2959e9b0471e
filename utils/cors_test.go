package utils

import "testing"

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "empty", origin: "", want: false},
		{name: "localhost", origin: "http://localhost:3000", want: true},
		{name: "loopback", origin: "http://127.0.0.1:8400", want: true},
		{name: "rfc1918 ten", origin: "http://10.1.2.3", want: true},
		{name: "rfc1918 one seventy two", origin: "http://172.16.0.5:5173", want: true},
		{name: "rfc1918 one ninety two", origin: "https://192.168.1.10", want: true},
		{name: "link local", origin: "http://169.254.10.10", want: true},
		{name: "ipv6 loopback", origin: "http://[::1]:3000", want: true},
		{name: "mdns hostname", origin: "http://mediabox.local", want: true},
		{name: "single label lan host", origin: "http://nas:8080", want: true},
		{name: "public ip", origin: "http://8.8.8.8", want: false},
		{name: "public domain", origin: "https://example.com", want: false},
		{name: "public subdomain", origin: "https://app.example.com:443", want: false},
		{name: "garbage", origin: "not a url", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAllowedOrigin(tt.origin); got != tt.want {
				t.Errorf("IsAllowedOrigin(%q) = %t, want %t", tt.origin, got, tt.want)
			}
		})
	}
}
