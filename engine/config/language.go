package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SupportedLanguages are the language codes shipped with the game.
var SupportedLanguages = []string{"en", "pl", "ger"}

// Localization holds the UI strings of every loaded language.
type Localization struct {
	language string
	texts    map[string]map[string]string
}

// LoadLanguages reads every <code>.json file from the directory. Missing
// languages are tolerated; a missing key falls back to the key itself.
func LoadLanguages(path string) (*Localization, error) {
	loc := &Localization{
		language: "en",
		texts:    make(map[string]map[string]string),
	}
	for _, code := range SupportedLanguages {
		data, err := os.ReadFile(filepath.Join(path, code+".json"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read language file %s: %w", code, err)
		}
		texts := make(map[string]string)
		if err := json.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("failed to parse language file %s: %w", code, err)
		}
		loc.texts[code] = texts
	}
	return loc, nil
}

// SetLanguage switches the active language if it was loaded.
func (l *Localization) SetLanguage(code string) bool {
	if _, ok := l.texts[code]; !ok {
		return false
	}
	l.language = code
	return true
}

// Language returns the active language code.
func (l *Localization) Language() string { return l.language }

// Localize translates a key into the active language, upper-casing the key
// for lookup the way the UI labels do. Unknown keys come back unchanged.
func (l *Localization) Localize(key string) string {
	if texts, ok := l.texts[l.language]; ok {
		if text, found := texts[strings.ToUpper(key)]; found {
			return text
		}
	}
	return key
}
