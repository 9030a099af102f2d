package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Preprocessor normalizes a raw header string into a canonical comparable
// form. It is deterministic and pure; each call also reports which
// pipeline steps actually changed the string, so a match can later be
// explained.
type Preprocessor struct {
	abbreviations map[string]string
	stopWords     map[string]struct{}
	minimal       bool
}

// NewPreprocessor returns the full pipeline with the built-in
// compliance-vocabulary abbreviation and stop-word tables.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		abbreviations: defaultAbbreviations(),
		stopWords:     defaultStopWords(),
	}
}

// NewMinimalPreprocessor returns a variant that only performs Unicode
// normalization, for callers needing neutral normalization without the
// abbreviation or stop-word tables.
func NewMinimalPreprocessor() *Preprocessor {
	return &Preprocessor{minimal: true}
}

// AddAbbreviation registers a custom word-level expansion.
func (p *Preprocessor) AddAbbreviation(abbrev, expansion string) {
	if p.abbreviations == nil {
		p.abbreviations = make(map[string]string)
	}
	p.abbreviations[strings.ToLower(abbrev)] = strings.ToLower(expansion)
}

// AddStopWord registers an extra word to drop during preprocessing.
func (p *Preprocessor) AddStopWord(word string) {
	if p.stopWords == nil {
		p.stopWords = make(map[string]struct{})
	}
	p.stopWords[strings.ToLower(word)] = struct{}{}
}

var separatorReplacer = strings.NewReplacer(
	"_", " ", "-", " ", ".", " ", "/", " ", "\\", " ", "|", " ",
)

// Preprocess runs the normalization pipeline and returns the canonical
// form together with the ordered list of steps that fired.
func (p *Preprocessor) Preprocess(text string) (string, []string) {
	var steps []string
	out := text

	if !norm.NFC.IsNormalString(out) {
		out = norm.NFC.String(out)
		steps = append(steps, "unicode_normalization")
	}
	if p.minimal {
		return out, steps
	}

	if lower := strings.ToLower(out); lower != out {
		out = lower
		steps = append(steps, "lowercase")
	}

	if sep := collapseSpaces(separatorReplacer.Replace(out)); sep != out {
		out = sep
		steps = append(steps, "normalize_separators")
	}

	if expanded := p.expandAbbreviations(out); expanded != out {
		out = expanded
		steps = append(steps, "expand_abbreviations")
	}

	if filtered := p.removeStopWords(out); filtered != out {
		out = filtered
		steps = append(steps, "remove_stop_words")
	}

	if cleaned := finalCleanup(out); cleaned != out {
		out = cleaned
		steps = append(steps, "normalize_chars")
	}

	return out, steps
}

// word-by-word table lookup; an expansion may replace one word with several
func (p *Preprocessor) expandAbbreviations(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if exp, ok := p.abbreviations[w]; ok {
			out = append(out, exp)
		} else {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

func (p *Preprocessor) removeStopWords(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := p.stopWords[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// drop everything that is neither alphanumeric nor whitespace
func finalCleanup(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return collapseSpaces(b.String())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func defaultAbbreviations() map[string]string {
	return map[string]string{
		"id":     "identifier",
		"ids":    "identifiers",
		"poam":   "plan of action and milestones",
		"poa&m":  "plan of action and milestones",
		"poc":    "point of contact",
		"ssp":    "system security plan",
		"ato":    "authority to operate",
		"csp":    "cloud service provider",
		"3pao":   "third party assessment organization",
		"isso":   "information system security officer",
		"fisma":  "federal information security management act",
		"nist":   "national institute of standards and technology",
		"rmf":    "risk management framework",
		"vuln":   "vulnerability",
		"vulns":  "vulnerabilities",
		"cve":    "common vulnerabilities and exposures",
		"cvss":   "common vulnerability scoring system",
		"env":    "environment",
		"desc":   "description",
		"num":    "number",
		"no":     "number",
		"qty":    "quantity",
		"addr":   "address",
		"info":   "information",
		"mgmt":   "management",
		"org":    "organization",
		"sys":    "system",
		"app":    "application",
		"db":     "database",
		"os":     "operating system",
		"sw":     "software",
		"hw":     "hardware",
	}
}

func defaultStopWords() map[string]struct{} {
	words := []string{
		"the", "and", "or", "of", "in", "on", "at", "to",
		"for", "with", "by", "from", "a", "an", "is", "are",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
