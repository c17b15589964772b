package service

import "strings"

func detectDeviceType(userAgent string) string {
	if userAgent == "" {
		return "desktop"
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "ipad"),
		strings.Contains(ua, "playbook"), strings.Contains(ua, "silk"):
		return "tablet"
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "android"),
		strings.Contains(ua, "iphone"), strings.Contains(ua, "ipod"),
		strings.Contains(ua, "blackberry"), strings.Contains(ua, "opera mini"):
		return "mobile"
	default:
		return "desktop"
	}
}

func detectBrowser(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "opera"), strings.Contains(ua, "opr"):
		return "Opera"
	default:
		return "Unknown"
	}
}

func detectOS(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os"):
		return "MacOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return "iOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}
