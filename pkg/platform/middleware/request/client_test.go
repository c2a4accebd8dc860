package request

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"targetkit/pkg/requestcontext"
)

func TestClientMetadata(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "direct peer", remote: "203.0.113.9:5000", want: "203.0.113.9"},
		{name: "ipv6 peer", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{
			name:    "untrusted peer cannot forward",
			remote:  "203.0.113.9:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:    "203.0.113.9",
		},
		{
			name:    "trusted proxy forwards first hop",
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.1.2.3"},
			want:    "198.51.100.1",
		},
		{
			name:    "trusted proxy with X-Real-IP",
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.2"},
			want:    "198.51.100.2",
		},
		{
			name:    "garbage forwarded value",
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:    "10.1.2.3",
		},
		{name: "unparseable remote", remote: "pipe", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ip, ua string
			h := ClientMetadata(trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				ip = requestcontext.ClientIP(r.Context())
				ua = requestcontext.UserAgent(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("User-Agent", "curl/8.0")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			serve(h, req)

			assert.Equal(t, tt.want, ip)
			assert.Equal(t, "curl/8.0", ua)
		})
	}
}

func TestNetworkPrefix(t *testing.T) {
	assert.Equal(t, "192.168.1.0/24", networkPrefix("192.168.1.47"))
	assert.Equal(t, "2001:db8:85a3::/48", networkPrefix("2001:db8:85a3::8a2e:370:7334"))
	assert.Equal(t, "unknown", networkPrefix("unknown"))
	assert.Equal(t, "unknown", networkPrefix(""))
}
