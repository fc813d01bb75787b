// Package describe distills a course page into a short description and a
// detected language. The language feeds subtitle selection downstream.
package describe

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// Description is the readable summary of one course page.
type Description struct {
	Title    string
	Excerpt  string
	Text     string
	SiteName string
	// Language is the detected ISO 639-1 code, empty when detection had too
	// little text to say anything.
	Language string
}

// candidateLanguages keeps the detector small. Restricting the set makes
// detection on short pages far more reliable than the full 75-language model.
var candidateLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidateLanguages...).
			Build()
	})
	return detector
}

// minDetectableRunes guards against confident-sounding answers on a title
// and two buttons worth of text.
const minDetectableRunes = 40

// Describe extracts the readable article from a page and detects its
// language.
func Describe(pageURL, html string) (Description, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return Description{}, fmt.Errorf("bad page URL %q: %w", pageURL, err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return Description{}, fmt.Errorf("failed to extract readable content: %w", err)
	}

	d := Description{
		Title:    article.Title,
		Excerpt:  article.Excerpt,
		Text:     strings.TrimSpace(article.TextContent),
		SiteName: article.SiteName,
	}
	d.Language = DetectLanguage(d.Text)
	return d, nil
}

// DetectLanguage returns the ISO 639-1 code for text, or empty when the
// text is too short or the detector is unsure.
func DetectLanguage(text string) string {
	if len([]rune(text)) < minDetectableRunes {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
