package textutil

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// PlainText strips markup from free-form input typed at the prompt and collapses runs of
// whitespace to single spaces. Entities that bluemonday escapes are decoded back so
// "Fridge & Freezer" survives unchanged.
func PlainText(input string) string {
	cleaned := policy().Sanitize(input)
	cleaned = entityReplacer.Replace(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#34;", `"`,
	"&#39;", "'",
	"&quot;", `"`,
)
