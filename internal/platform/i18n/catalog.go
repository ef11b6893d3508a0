// Package i18n holds the display-language message catalog shared by HTTP handlers
// and services.
package i18n

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	mu        sync.RWMutex
	builder   = catalog.NewBuilder(catalog.Fallback(language.Vietnamese))
	known     = map[string]struct{}{}
	supported = []language.Tag{language.Vietnamese, language.English}
	matcher   = language.NewMatcher(supported)
)

// Register adds translations for tag. Later registrations of the same key win.
func Register(tag language.Tag, msgs map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	for key, msg := range msgs {
		if err := builder.SetString(tag, key, msg); err != nil {
			panic(fmt.Sprintf("i18n: register %s/%s: %v", tag, key, err))
		}
		known[key] = struct{}{}
	}
}

// Has reports whether key was registered in any language.
func Has(key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := known[key]
	return ok
}

// SetFallback makes lang the language used when the client expresses no usable
// preference. lang must be one of the supported languages.
func SetFallback(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("i18n: parse language %q: %w", lang, err)
	}
	mu.Lock()
	defer mu.Unlock()
	base, _ := tag.Base()
	ordered := []language.Tag{}
	for _, t := range supported {
		if b, _ := t.Base(); b == base {
			ordered = append([]language.Tag{t}, ordered...)
			continue
		}
		ordered = append(ordered, t)
	}
	if b, _ := ordered[0].Base(); b != base {
		return fmt.Errorf("i18n: unsupported language %q", lang)
	}
	supported = ordered
	matcher = language.NewMatcher(supported)
	return nil
}

// Fallback returns the current default language.
func Fallback() language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	return supported[0]
}

// Match picks the supported language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// Printer returns a printer bound to the shared catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(builder))
}
