package service

import (
	"strings"
	"unicode"

	"agri-advisor/internal/commodity"

	"golang.org/x/text/language"
)

// Supported answer languages. Hindi covers romanized Hindi as well.
var supportedLanguages = []language.Tag{language.English, language.Hindi, language.Marathi}

var languageMatcher = language.NewMatcher(supportedLanguages)

// Words that only Marathi uses among the supported Devanagari languages.
var marathiMarkers = []string{"आहे", "काय", "कधी", "कसे", "मध्ये", "पाणी", "द्यावे", "करावी", "शेत"}

// Common romanized Hindi function words.
var romanHindiMarkers = map[string]struct{}{
	"kab": {}, "kya": {}, "hai": {}, "kaise": {}, "kitna": {}, "mein": {}, "mera": {},
	"meri": {}, "dein": {}, "karna": {}, "kare": {}, "chahiye": {}, "bhav": {}, "bhao": {},
	"pani": {}, "paani": {}, "aaj": {}, "kal": {}, "ka": {}, "ki": {}, "ke": {},
}

// DetectLanguage returns the base language code for an answer. An explicit
// tag wins when it is one of the supported languages; otherwise the script
// and vocabulary of the query decide.
func DetectLanguage(query, tag string) string {
	if tag = strings.TrimSpace(tag); tag != "" {
		if t, err := language.Parse(tag); err == nil {
			if _, idx, conf := languageMatcher.Match(t); conf != language.No {
				base, _ := supportedLanguages[idx].Base()
				return base.String()
			}
		}
	}
	return detectFromText(query)
}

func detectFromText(query string) string {
	devanagari, letters := 0, 0
	for _, r := range query {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Devanagari, r) {
			devanagari++
		}
	}

	if letters > 0 && devanagari*2 >= letters {
		for _, m := range marathiMarkers {
			if strings.Contains(query, m) {
				return "mr"
			}
		}
		return "hi"
	}

	hits := 0
	for _, token := range strings.Fields(commodity.Normalize(query)) {
		if _, ok := romanHindiMarkers[token]; ok {
			hits++
		}
	}
	if hits >= 2 || (hits == 1 && len(strings.Fields(query)) <= 3) {
		return "hi"
	}
	return "en"
}

func languageName(code string) string {
	switch code {
	case "hi":
		return "Hindi"
	case "mr":
		return "Marathi"
	default:
		return "English"
	}
}
