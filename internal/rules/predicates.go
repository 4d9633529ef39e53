package rules

import (
	"regexp"
	"strings"
	"sync"

	"github.com/ndmitriev/docsweep/internal/models"
)

// Predicate is a custom field check. It receives the raw field value and
// reports whether the value is acceptable. Predicates are registered by name
// so rule sets can reference them declaratively.
type Predicate func(value any) bool

var (
	predMu     sync.RWMutex
	predicates = map[string]Predicate{}
)

// Register makes a predicate available to rule sets under the given name.
// Registering the same name twice replaces the earlier predicate.
func Register(name string, p Predicate) {
	predMu.Lock()
	defer predMu.Unlock()
	predicates[name] = p
}

// Lookup returns the predicate registered under name.
func Lookup(name string) (Predicate, bool) {
	predMu.RLock()
	defer predMu.RUnlock()
	p, ok := predicates[name]
	return p, ok
}

// emailRe is deliberately loose: it checks shape, not deliverability.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func init() {
	Register("email_format", func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		return emailRe.MatchString(s)
	})

	Register("non_empty", func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		return strings.TrimSpace(s) != ""
	})

	Register("non_negative", func(v any) bool {
		n, ok := models.NumberOf(v)
		return ok && n >= 0
	})
}
