package i18n

import (
	"encoding/json"
	"io/fs"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message is a translatable message with its English default
type Message = i18n.Message

var (
	mu        sync.RWMutex
	bundle    = i18n.NewBundle(language.AmericanEnglish)
	localizer = i18n.NewLocalizer(bundle, language.AmericanEnglish.String())
)

// Init initializes the i18n bundle with the given locale files
func Init(localeFS fs.FS, lang string) error {
	b := i18n.NewBundle(language.AmericanEnglish)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	// Load locale files - ignore errors for missing files
	b.LoadMessageFileFS(localeFS, "locales/en-us.json")
	b.LoadMessageFileFS(localeFS, "locales/ko-kr.json")

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	localizer = i18n.NewLocalizer(bundle, lang)
	return nil
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]interface{}, pluralCount ...int) string {
	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	msg, err := current().Localize(config)
	if err != nil {
		// Return message ID if translation fails
		return messageID
	}
	return msg
}

// M translates msg, falling back to its default text when the loaded
// locales don't carry it
func M(msg *Message, templateData map[string]interface{}) string {
	out, err := current().Localize(&i18n.LocalizeConfig{
		DefaultMessage: msg,
		TemplateData:   templateData,
	})
	if out == "" && err != nil {
		return msg.Other
	}
	return out
}

// SetLocale changes the current locale
func SetLocale(lang string) {
	mu.Lock()
	defer mu.Unlock()
	localizer = i18n.NewLocalizer(bundle, lang)
}

func current() *i18n.Localizer {
	mu.RLock()
	defer mu.RUnlock()
	return localizer
}
