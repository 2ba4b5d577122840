package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is the prompt language when none is requested.
const Default = "English"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full and native word forms
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish", "español"}},
	{"fr", "fra", "fre", "French", []string{"french", "français"}},
	{"de", "deu", "ger", "German", []string{"german", "deutsch"}},
	{"it", "ita", "", "Italian", []string{"italian", "italiano"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese", "português"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese", "日本語"}},
	{"ko", "kor", "", "Korean", []string{"korean", "한국어"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "中文"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
}

var index = buildIndex()

func buildIndex() map[string]*entry {
	idx := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		idx[e.code2] = e
		idx[e.code3] = e
		if e.alt3 != "" {
			idx[e.alt3] = e
		}
		for _, w := range e.words {
			idx[w] = e
		}
	}
	return idx
}

// Language is a resolved manual language.
type Language struct {
	// Tag is the BCP 47 tag, e.g. "ja" or "pt-BR".
	Tag string
	// Name is the English display name, e.g. "Japanese".
	Name string
}

// Resolve maps user input to a Language. It reports false when the input is
// neither a known word nor a parseable language tag.
func Resolve(input string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return Language{Tag: "en", Name: Default}, true
	}
	if e, ok := index[key]; ok {
		return Language{Tag: e.code2, Name: e.display}, true
	}
	tag, err := xlanguage.Parse(key)
	if err != nil || tag == xlanguage.Und {
		return Language{}, false
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return Language{}, false
	}
	return Language{Tag: tag.String(), Name: name}, true
}

// PromptName returns the display name for input, or the trimmed input itself
// when it cannot be resolved, so free-form requests still reach the model.
func PromptName(input string) string {
	if lang, ok := Resolve(input); ok {
		return lang.Name
	}
	return strings.TrimSpace(input)
}
