package main

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

type OptimizationMode string

const (
	ModeFull       OptimizationMode = "full"
	ModeSEO        OptimizationMode = "seo"
	ModeEngagement OptimizationMode = "engagement"
	ModeClarity    OptimizationMode = "clarity"
)

func parseMode(s string) (OptimizationMode, bool) {
	switch OptimizationMode(s) {
	case "":
		return ModeFull, true
	case ModeFull, ModeSEO, ModeEngagement, ModeClarity:
		return OptimizationMode(s), true
	}
	return "", false
}

type phraseRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func rule(pattern, replacement string) phraseRule {
	return phraseRule{pattern: regexp.MustCompile(`(?i)\b` + pattern + `\b`), replacement: replacement}
}

var seoRules = []phraseRule{
	rule(`was responsible for`, "led"),
	rule(`responsible for`, "led"),
	rule(`worked on`, "developed"),
	rule(`helped with`, "supported"),
	rule(`helped`, "supported"),
	rule(`was involved in`, "contributed to"),
	rule(`involved in`, "contributed to"),
	rule(`in charge of`, "managed"),
	rule(`duties included`, "delivered"),
}

var clarityRules = []phraseRule{
	rule(`in order to`, "to"),
	rule(`due to the fact that`, "because"),
	rule(`utilized`, "used"),
	rule(`utilize`, "use"),
	rule(`a large number of`, "many"),
}

var (
	fillerWords     = regexp.MustCompile(`(?i)\b(?:very|really|basically|actually)[ \t]+`)
	bulletGlyph     = regexp.MustCompile(`(?m)^[ \t]*(?:[*•·–]|-)[ \t]+`)
	bulletLowerCase = regexp.MustCompile(`(?m)^- \p{Ll}`)
	repeatedSpaces  = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpace   = regexp.MustCompile(`(?m)[ \t]+$`)
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
	keywordToken    = regexp.MustCompile(`[a-z][a-z0-9+#]{3,}`)
)

const coreKeywordsLabel = "Core Keywords:"

// PostProcess applies the deterministic passes for the requested mode to a
// model rewrite. It returns the final text and the job keywords the resume
// covers.
func PostProcess(text string, input OptimizeInput) (string, []string) {
	var keywords []string
	switch input.Mode {
	case ModeSEO:
		text, keywords = seoPass(text, input)
	case ModeEngagement:
		text = engagementPass(text)
	case ModeClarity:
		text = clarityPass(text)
	default:
		text, keywords = seoPass(text, input)
		text = engagementPass(text)
		text = clarityPass(text)
	}
	return text, keywords
}

func seoPass(text string, input OptimizeInput) (string, []string) {
	text = applyRules(text, seoRules)

	covered := matchedKeywords(extractKeywords(input.JobDescription, 8), input.ResumeText+"\n"+text)
	if len(covered) > 0 && !strings.Contains(text, coreKeywordsLabel) {
		text = strings.TrimRight(text, " \t\n") + "\n\n" + coreKeywordsLabel + " " + strings.Join(covered, ", ")
	}
	return text, covered
}

func engagementPass(text string) string {
	text = bulletGlyph.ReplaceAllString(text, "- ")
	return bulletLowerCase.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ToUpper(m)
	})
}

func clarityPass(text string) string {
	text = applyRules(text, clarityRules)
	text = fillerWords.ReplaceAllString(text, "")
	text = repeatedSpaces.ReplaceAllString(text, " ")
	text = trailingSpace.ReplaceAllString(text, "")
	text = extraBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// applyRules substitutes each phrase, keeping the capitalisation of the
// matched text's first letter.
func applyRules(text string, rules []phraseRule) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllStringFunc(text, func(m string) string {
			first, _ := utf8.DecodeRuneInString(m)
			if unicode.IsUpper(first) {
				return capitalize(r.replacement)
			}
			return r.replacement
		})
	}
	return text
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var stopwords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "also": {}, "apply": {}, "been": {},
	"being": {}, "both": {}, "candidate": {}, "company": {}, "each": {}, "from": {},
	"have": {}, "including": {}, "into": {}, "join": {}, "looking": {}, "more": {},
	"must": {}, "other": {}, "over": {}, "plus": {}, "role": {}, "should": {},
	"such": {}, "team": {}, "than": {}, "that": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"using": {}, "very": {}, "well": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "will": {}, "with": {}, "within": {}, "work": {},
	"would": {}, "years": {}, "your": {}, "ability": {}, "strong": {},
	"experience": {}, "preferred": {}, "required": {}, "requirements": {},
	"responsibilities": {}, "skills": {}, "knowledge": {}, "excellent": {},
}

// extractKeywords ranks non-stopword tokens by frequency, then alphabetically.
func extractKeywords(text string, limit int) []string {
	counts := map[string]int{}
	for _, tok := range keywordToken.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for k := range counts {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

func matchedKeywords(keywords []string, text string) []string {
	present := map[string]struct{}{}
	for _, tok := range keywordToken.FindAllString(strings.ToLower(text), -1) {
		present[tok] = struct{}{}
	}
	var out []string
	for _, k := range keywords {
		if _, ok := present[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
