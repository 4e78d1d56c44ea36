package privacy

import (
	"strings"

	"github.com/mssola/useragent"
)

// Client is the coarse description of a caller's user agent. It carries no
// version detail so it cannot single out a device.
type Client struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// DescribeClient parses a User-Agent header into a Client.
func DescribeClient(userAgent string) Client {
	if strings.TrimSpace(userAgent) == "" {
		return Client{Browser: "unknown", OS: "unknown"}
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	return Client{
		Browser: orUnknown(browser),
		OS:      orUnknown(ua.OSInfo().Name),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

func orUnknown(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
