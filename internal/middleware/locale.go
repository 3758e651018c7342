package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// Locale picks the best supported language for Accept-Language and reports it as Content-Language.
func Locale(matcher language.Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, _, _ := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		tag, _, _ := matcher.Match(tags...)
		base, _ := tag.Base()
		c.Set("locale", base.String())
		c.Header("Content-Language", base.String())
		c.Next()
	}
}
