package utils

import (
	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile or desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver"`
	IsBot      bool   `json:"is_bot"`
	Raw        string `json:"raw"`
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)
	browser, version := parser.Browser()

	info := DeviceInfo{
		OS:         parser.OS(),
		Browser:    browser,
		BrowserVer: version,
		IsBot:      parser.Bot(),
		Raw:        userAgent,
	}

	if parser.Mobile() {
		info.DeviceType = "mobile"
	} else {
		info.DeviceType = "desktop"
	}

	return info
}
