package network

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded-for single address",
			forwarded:  "203.0.113.7",
			remoteAddr: "10.0.0.1:12345",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded-for chain keeps the first hop",
			forwarded:  "203.0.113.7, 10.0.0.2, 172.16.0.1",
			remoteAddr: "10.0.0.1:12345",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded-for trimmed of whitespace",
			forwarded:  "  203.0.113.7  ",
			remoteAddr: "10.0.0.1:12345",
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip when no forwarded-for",
			realIP:     "203.0.113.7",
			remoteAddr: "10.0.0.1:12345",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded-for beats real-ip",
			forwarded:  "203.0.113.7",
			realIP:     "10.0.0.2",
			remoteAddr: "10.0.0.1:12345",
			want:       "203.0.113.7",
		},
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.44:12345",
			want:       "192.0.2.44",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.44",
			want:       "192.0.2.44",
		},
		{
			name:       "ipv6 remote addr keeps brackets",
			remoteAddr: "[::1]:12345",
			want:       "[::1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			req.RemoteAddr = tt.remoteAddr

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetClientIP_DirectConnection(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:54321"

	if got := GetClientIP(req); got != "127.0.0.1" {
		t.Errorf("GetClientIP() = %q, want 127.0.0.1", got)
	}
}
