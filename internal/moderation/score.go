package moderation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Result is the outcome of scoring one message's content. It is
// deterministic for identical input and carries one tag per contributing
// signal so decisions remain explainable after the fact.
type Result struct {
	Score   int
	Reasons []string
	HasLink bool
}

// Signal weights. Each category contributes at most once per message.
const (
	weightStrong        = 2
	weightMoney         = 1
	weightService       = 2
	weightShortWithLink = 1
	weightStyle         = 1
)

// Stylistic heuristic tunables. The letter minimum guards against caps
// false positives on short strings.
const (
	minEmojiCount  = 4
	capsRatioLimit = 0.6
	minCapsLetters = 12
	shortTextRunes = 40
)

// Link patterns are kept as a set of small explicit expressions instead of
// one combined regexp so each obfuscation variant stays auditable. They are
// matched against the lower-cased text in order; the first hit wins.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://\S+`),
	regexp.MustCompile(`\bwww\.\S+`),
	regexp.MustCompile(`\b(?:t|telegram)\.me/\S+`),
	regexp.MustCompile(`\bt[\[(]\.[\])]me/\S+`), // bracketed dot: t[.]me, t(.)me
	regexp.MustCompile(`\bt[․·∙•]me/\S+`),       // punctuation substitutes for the dot
	regexp.MustCompile(`\bt me/\S+`),
	regexp.MustCompile(`\bjoinchat/\S+`),
	regexp.MustCompile(`(?:^|\s)\+[a-z0-9_-]{10,}`), // bare invite hash
	regexp.MustCompile(`@[a-z0-9_]{4,}`),
}

// Explicit "contact me" phrases that count as a contact reference even
// without a link.
var contactPhrases = []string{
	"message me privately",
	"write me in dm",
	"dm me",
	"pm me",
	"contact me in private",
	"write to me directly",
}

// Trigger stems are matched as case-insensitive substrings of the full text.
var (
	strongStems = []string{
		"subscribe",
		"join",
		"channel",
		"chat",
		"group",
		"follow us",
	}
	moneyStems = []string{
		"discount",
		"promo code",
		"earnings",
		"income",
		"invest",
		"crypto",
		"cashback",
	}
	serviceStems = []string{
		"i can help with",
		"i do ",
		"reach out",
		"will do it for you",
	}
)

// Score computes the advertisement score for extracted message content.
// It is a pure function: no external calls, no shared state, identical
// input always yields an identical Result.
func Score(text string, entities []Entity) Result {
	textLower := strings.ToLower(text)

	res := Result{
		HasLink: hasLinkEntity(entities) || matchesLinkPattern(textLower) || containsContactPhrase(textLower),
	}
	if res.HasLink {
		res.Reasons = append(res.Reasons, "link_detected")
	}

	if hits := countStemHits(textLower, strongStems); hits > 0 {
		res.Score += weightStrong
		res.Reasons = append(res.Reasons, fmt.Sprintf("strong_ads:%d", hits))
	}
	if hits := countStemHits(textLower, moneyStems); hits > 0 {
		res.Score += weightMoney
		res.Reasons = append(res.Reasons, fmt.Sprintf("money_ads:%d", hits))
	}

	// Service offers only read as advertising when the message also tells
	// the reader where to go; without a link or contact reference the
	// category is skipped entirely.
	if res.HasLink {
		if hits := countStemHits(textLower, serviceStems); hits > 0 {
			res.Score += weightService
			res.Reasons = append(res.Reasons, fmt.Sprintf("service_ads:%d", hits))
		}
		if len([]rune(strings.TrimSpace(text))) < shortTextRunes {
			res.Score += weightShortWithLink
			res.Reasons = append(res.Reasons, "short_with_link")
		}
	}

	if lotsOfEmojiOrCaps(text) {
		res.Score += weightStyle
		res.Reasons = append(res.Reasons, "emoji_or_caps")
	}

	return res
}

func hasLinkEntity(entities []Entity) bool {
	for _, e := range entities {
		switch e.Kind {
		case EntityURL, EntityTextLink, EntityMention:
			return true
		}
	}
	return false
}

func matchesLinkPattern(textLower string) bool {
	for _, re := range linkPatterns {
		if re.MatchString(textLower) {
			return true
		}
	}
	return false
}

func containsContactPhrase(textLower string) bool {
	for _, p := range contactPhrases {
		if strings.Contains(textLower, p) {
			return true
		}
	}
	return false
}

func countStemHits(textLower string, stems []string) int {
	hits := 0
	for _, stem := range stems {
		if strings.Contains(textLower, stem) {
			hits++
		}
	}
	return hits
}

// lotsOfEmojiOrCaps reports whether the text is shouting: four or more
// pictographic emoji, or a caps ratio of at least capsRatioLimit across at
// least minCapsLetters alphabetic characters.
func lotsOfEmojiOrCaps(text string) bool {
	emoji := 0
	letters := 0
	upper := 0
	for _, r := range text {
		if r >= 0x1F300 && r <= 0x1FAFF {
			emoji++
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if emoji >= minEmojiCount {
		return true
	}
	if letters < minCapsLetters {
		return false
	}
	return float64(upper)/float64(letters) >= capsRatioLimit
}
