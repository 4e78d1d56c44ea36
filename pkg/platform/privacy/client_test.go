package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeClient(t *testing.T) {
	t.Run("desktop browser", func(t *testing.T) {
		c := DescribeClient("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, "chrome", c.Browser)
		assert.Equal(t, "windows", c.OS)
		assert.False(t, c.Mobile)
		assert.False(t, c.Bot)
	})

	t.Run("crawler", func(t *testing.T) {
		c := DescribeClient("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, c.Bot)
	})

	t.Run("empty header", func(t *testing.T) {
		assert.Equal(t, Client{Browser: "unknown", OS: "unknown"}, DescribeClient("  "))
	})
}
