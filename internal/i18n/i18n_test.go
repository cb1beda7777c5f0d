package i18n

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"":                      LocaleZhCN,
		"en-US,en;q=0.9":        LocaleEnUS,
		"en-GB":                 LocaleEnUS,
		"zh-TW,zh;q=0.8":        LocaleZhCN,
		"fr-FR":                 LocaleZhCN,
		"not a language header": LocaleZhCN,
	}
	for accept, want := range cases {
		assert.Equal(t, want, Match(accept), accept)
	}
}

func TestResolveLocalePrefersQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/ping?lang=en-US", nil)
	c.Request.Header.Set("Accept-Language", "zh-CN")
	assert.Equal(t, LocaleEnUS, ResolveLocale(c))

	assert.Equal(t, DefaultLocale, ResolveLocale(nil))
}

func TestTFallsBack(t *testing.T) {
	assert.Equal(t, "Insufficient points", T(LocaleEnUS, "error.insufficient_points"))
	assert.Equal(t, "积分不足", T("ja-JP", "error.insufficient_points"))
	assert.Equal(t, "error.no_such_key", T(LocaleEnUS, "error.no_such_key"))
}

func TestSprintfFormatsArgs(t *testing.T) {
	assert.Equal(t, "Too many requests, retry in 30 seconds", Sprintf(LocaleEnUS, "error.rate_limited", 30))
}

func TestLocalesCoverSameKeys(t *testing.T) {
	zh := messages[LocaleZhCN]
	en := messages[LocaleEnUS]
	assert.Equal(t, len(zh), len(en))
	for key := range zh {
		_, ok := en[key]
		assert.True(t, ok, "missing en-US message for %s", key)
		assert.Equal(t, strings.Count(zh[key], "%d"), strings.Count(en[key], "%d"), key)
	}
}
