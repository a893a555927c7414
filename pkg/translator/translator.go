package translator

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	LanguageFr = "fr"
	LanguageEn = "en"
)

//go:embed locales/*.toml
var embedded embed.FS

// Translator renders user-facing replies in the user's language.
type Translator struct {
	bundle   *i18n.Bundle
	fallback string
}

// Config selects the fallback language and, optionally, an override folder of TOML message files.
type Config struct {
	DefaultLanguage string
	Files           fs.FS
}

// New builds a Translator from the embedded locales plus any files in cfg.Files.
func New(cfg Config) (*Translator, error) {
	fallback := cfg.DefaultLanguage
	if fallback == "" {
		fallback = LanguageFr
	}

	tag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("translator: invalid default language %q: %w", fallback, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := loadDir(bundle, embedded, "locales"); err != nil {
		return nil, err
	}
	if cfg.Files != nil {
		if err := loadDir(bundle, cfg.Files, "."); err != nil {
			return nil, err
		}
	}

	return &Translator{bundle: bundle, fallback: fallback}, nil
}

// MustNew is New for wiring code and tests.
func MustNew(cfg Config) *Translator {
	t, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

func loadDir(bundle *i18n.Bundle, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("translator: list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := e.Name()
		if dir != "." {
			path = dir + "/" + path
		}
		if _, err := bundle.LoadMessageFileFS(fsys, path); err != nil {
			return fmt.Errorf("translator: load %s: %w", path, err)
		}
	}
	return nil
}

// T localizes id for lang. Unknown ids render as the id itself.
func (t *Translator) T(lang, id string, data map[string]any) string {
	localizer := i18n.NewLocalizer(t.bundle, lang, t.fallback)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

// Supported reports whether lang has at least one message file loaded.
func (t *Translator) Supported(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	for _, l := range t.bundle.LanguageTags() {
		if l == tag {
			return true
		}
	}
	return false
}
