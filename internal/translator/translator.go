// Package translator turns provider error codes and local failure kinds into
// user-facing messages.
package translator

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/validation"
)

//go:embed messages/*.yaml
var catalogFS embed.FS

// DefaultLocale is the locale of the original application.
const DefaultLocale = "pt-BR"

// Message keys for local, non-provider messages.
const (
	KeyStorageFailure  = "storage_failure"
	KeyNoCurrentUser   = "no_current_user"
	KeyResetEmailSent  = "reset_email_sent"
	KeyRegistered      = "registered"
	KeyLoggedIn        = "logged_in"
	KeyLoggedOut       = "logged_out"
	KeyNoUsers         = "no_users"
	KeyListUsersFailed = "list_users_failed"
)

// knownCodes is the closed set of provider codes with dedicated messages.
var knownCodes = []string{
	identity.CodeEmailAlreadyInUse,
	identity.CodeWeakPassword,
	identity.CodeInvalidEmail,
	identity.CodeUserNotFound,
	identity.CodeWrongPassword,
	identity.CodeTooManyRequests,
}

// Catalog is one locale's message file.
type Catalog struct {
	Locale     string            `yaml:"locale"`
	Provider   map[string]string `yaml:"provider"`
	Validation map[string]string `yaml:"validation"`
	Messages   map[string]string `yaml:"messages"`
	Fallback   string            `yaml:"fallback"`
	// FallbackWithDetail is a format string taking the raw provider message.
	FallbackWithDetail string `yaml:"fallback_with_detail"`
}

// Translator resolves messages against one catalog.
type Translator struct {
	catalog *Catalog
	tag     language.Tag
}

// New loads the embedded catalogs and picks the best match for locale.
func New(locale string) (*Translator, error) {
	catalogs, err := loadCatalogs(catalogFS)
	if err != nil {
		return nil, err
	}

	tags := make([]language.Tag, 0, len(catalogs))
	byTag := make(map[language.Tag]*Catalog, len(catalogs))
	// the default locale goes first so the matcher falls back to it
	def, ok := catalogs[DefaultLocale]
	if !ok {
		return nil, fmt.Errorf("default catalog %s is missing", DefaultLocale)
	}
	defTag := language.Make(DefaultLocale)
	tags = append(tags, defTag)
	byTag[defTag] = def
	for name, c := range catalogs {
		if name == DefaultLocale {
			continue
		}
		tag := language.Make(name)
		tags = append(tags, tag)
		byTag[tag] = c
	}

	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	matcher := language.NewMatcher(tags)
	_, idx, _ := matcher.Match(language.Make(locale))

	return &Translator{catalog: byTag[tags[idx]], tag: tags[idx]}, nil
}

func loadCatalogs(fsys fs.FS) (map[string]*Catalog, error) {
	entries, err := fs.ReadDir(fsys, "messages")
	if err != nil {
		return nil, fmt.Errorf("read message catalogs: %w", err)
	}
	catalogs := make(map[string]*Catalog, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join("messages", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", entry.Name(), err)
		}
		var c Catalog
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", entry.Name(), err)
		}
		if c.Locale == "" {
			c.Locale = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		if c.Fallback == "" {
			return nil, fmt.Errorf("catalog %s has no fallback message", entry.Name())
		}
		catalogs[c.Locale] = &c
	}
	return catalogs, nil
}

// Locale returns the locale the translator resolved to.
func (t *Translator) Locale() string {
	return t.tag.String()
}

// Translate maps a provider error code to a message. Codes outside the known
// set get the fallback, which includes rawMessage when one is given.
// It never returns an empty string.
func (t *Translator) Translate(code, rawMessage string) string {
	code = identity.NormalizeCode(code)
	if isKnown(code) {
		if msg := t.catalog.Provider[code]; msg != "" {
			return msg
		}
	}
	return t.fallback(rawMessage)
}

// TranslateError translates any error. Provider errors use their code and
// message; everything else goes to the fallback with the error text.
func (t *Translator) TranslateError(err error) string {
	if err == nil {
		return t.catalog.Fallback
	}
	if perr, ok := asProviderError(err); ok {
		return t.Translate(perr.Code, perr.Message)
	}
	return t.fallback(err.Error())
}

// Validation returns the message for a validation failure kind.
func (t *Translator) Validation(kind validation.Kind) string {
	if msg := t.catalog.Validation[string(kind)]; msg != "" {
		return msg
	}
	return t.catalog.Fallback
}

// Message returns a local message by key, or the fallback when the key is unknown.
func (t *Translator) Message(key string) string {
	if msg := t.catalog.Messages[key]; msg != "" {
		return msg
	}
	return t.catalog.Fallback
}

func (t *Translator) fallback(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || t.catalog.FallbackWithDetail == "" {
		return t.catalog.Fallback
	}
	return fmt.Sprintf(t.catalog.FallbackWithDetail, raw)
}

func isKnown(code string) bool {
	for _, c := range knownCodes {
		if c == code {
			return true
		}
	}
	return false
}

func asProviderError(err error) (*identity.Error, bool) {
	var perr *identity.Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
