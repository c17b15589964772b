package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaWindowsChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaAndroidMobile = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaIPad          = "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"
	uaLinuxFirefox  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

func TestDetectDeviceType(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"empty defaults to desktop", "", "desktop"},
		{"windows desktop", uaWindowsChrome, "desktop"},
		{"android phone", uaAndroidMobile, "mobile"},
		{"ipad is tablet not mobile", uaIPad, "tablet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectDeviceType(tt.userAgent))
		})
	}
}

func TestDetectBrowser(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"empty", "", ""},
		{"chrome", uaWindowsChrome, "Chrome"},
		{"firefox", uaLinuxFirefox, "Firefox"},
		// Edge UAs also contain "Chrome", so Edge has to win.
		{"edge before chrome", uaWindowsChrome + " Edge/120.0", "Edge"},
		{"unknown", "curl/8.4.0", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectBrowser(tt.userAgent))
		})
	}
}

func TestDetectOS(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"empty", "", ""},
		{"windows", uaWindowsChrome, "Windows"},
		// Android UAs also contain "Linux", so Android has to win.
		{"android before linux", uaAndroidMobile, "Android"},
		{"linux", uaLinuxFirefox, "Linux"},
		{"unknown", "curl/8.4.0", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectOS(tt.userAgent))
		})
	}
}

func TestHashToken(t *testing.T) {
	// Deterministic, hex encoded, and never the input itself.
	assert.Equal(t, hashToken("abc"), hashToken("abc"))
	assert.NotEqual(t, hashToken("abc"), hashToken("abd"))
	assert.Len(t, hashToken("abc"), 64)
	assert.NotContains(t, hashToken("some-refresh-token"), "some-refresh-token")
}

func TestGenerateToken(t *testing.T) {
	first, err := generateToken()
	assert.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := generateToken()
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}
