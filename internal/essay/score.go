package essay

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
)

const (
	baseline           = 50
	plagiarismBaseline = 85
)

// Rule adds Delta when any phrase in When appears; otherwise it applies
// Else, if set.
type Rule struct {
	When  []string
	Delta int
	Else  *Rule
}

func (r Rule) apply(text string) int {
	if containsAny(text, r.When) {
		return r.Delta
	}
	if r.Else != nil {
		return r.Else.apply(text)
	}
	return 0
}

// OriginalityRules drive the plagiarism sub-score, which is assigned rather
// than accumulated.
type OriginalityRules struct {
	Original      []string
	OriginalScore int
	Common        []string
	CommonScore   int
	Copied        []string
	CopiedScore   int
	Boost         []string
	BoostDelta    int
}

// PhraseTable is the lexical configuration of the health scorer. Phrases
// are matched against lower-cased feedback.
type PhraseTable struct {
	Content   []Rule
	Structure []Rule
	Voice     []Rule
	Grammar   []Rule

	// Every occurrence of these costs GrammarIssuePenalty.
	GrammarIssues       []string
	GrammarIssuePenalty int

	Originality OriginalityRules
}

// DefaultPhraseTable reproduces the reviewer markers the product has always
// scored against. Negations are not detected: "not compelling" still counts
// as "compelling".
var DefaultPhraseTable = PhraseTable{
	Content: []Rule{
		{When: []string{"compelling", "strong story", "excellent details"}, Delta: 30,
			Else: &Rule{When: []string{"weak story", "lacks detail", "vague"}, Delta: -20}},
		{When: []string{"answers the prompt well", "effectively addresses"}, Delta: 20,
			Else: &Rule{When: []string{"doesn't answer", "strays from prompt"}, Delta: -30}},
	},
	Structure: []Rule{
		{When: []string{"well-organized", "smooth transitions", "flows well"}, Delta: 30,
			Else: &Rule{When: []string{"disorganized", "abrupt transitions", "poor flow"}, Delta: -20}},
		{When: []string{"strong opening", "compelling hook"}, Delta: 20,
			Else: &Rule{When: []string{"weak opening", "needs a hook"}, Delta: -15}},
	},
	Voice: []Rule{
		{When: []string{"authentic", "genuine voice", "personality shines"}, Delta: 30,
			Else: &Rule{When: []string{"generic", "cliché", "lacks personality"}, Delta: -20}},
		{When: []string{"unique perspective", "distinct voice"}, Delta: 20},
	},
	Grammar: []Rule{
		{When: []string{"well-written", "polished", "clean prose"}, Delta: 30,
			Else: &Rule{When: []string{"many errors", "needs editing"}, Delta: -20}},
	},
	GrammarIssues:       []string{"grammar", "spelling", "punctuation", "typo", "error"},
	GrammarIssuePenalty: 10,
	Originality: OriginalityRules{
		Original:      []string{"original", "unique", "personal"},
		OriginalScore: 100,
		Common:        []string{"cliché", "generic", "common phrase"},
		CommonScore:   75,
		Copied:        []string{"plagiarism", "copied", "not original"},
		CopiedScore:   20,
		Boost:         []string{"authentic voice", "personal story"},
		BoostDelta:    15,
	},
}

// Score grades feedback with DefaultPhraseTable.
func Score(feedback, essayText string, wordCount int) record.HealthScore {
	return DefaultPhraseTable.Score(feedback, essayText, wordCount)
}

// Score is deterministic and does no I/O. Only the feedback and the word
// count are graded; essayText is accepted so callers pass the reviewed draft.
func (t PhraseTable) Score(feedback, essayText string, wordCount int) record.HealthScore {
	text := strings.ToLower(feedback)

	content := baseline + sumRules(t.Content, text)
	structure := baseline + sumRules(t.Structure, text)
	voice := baseline + sumRules(t.Voice, text)
	grammar := baseline - countAll(text, t.GrammarIssues)*t.GrammarIssuePenalty + sumRules(t.Grammar, text)
	plagiarism := t.Originality.score(text)

	s := record.HealthScore{
		Content:        clamp(content),
		Structure:      clamp(structure),
		Grammar:        clamp(grammar),
		Voice:          clamp(voice),
		Plagiarism:     clamp(plagiarism),
		WordCountScore: WordCountScore(wordCount),
	}
	s.Overall = Overall(s)
	return s
}

// Overall is the weighted sum 0.30 content, 0.20 structure, 0.15 grammar,
// 0.15 voice, 0.20 plagiarism, rounded half up.
func Overall(s record.HealthScore) int {
	weighted := 30*s.Content + 20*s.Structure + 15*s.Grammar + 15*s.Voice + 20*s.Plagiarism
	return (weighted + 50) / 100
}

// WordCountScore rates length against the 650-word Common App limit. It is
// reported alongside the score but does not feed Overall.
func WordCountScore(words int) int {
	switch {
	case words < 250:
		return 40
	case words < 400:
		return 70
	case words > 650:
		return 80
	default:
		return 100
	}
}

func (o OriginalityRules) score(text string) int {
	score := plagiarismBaseline
	if containsAny(text, o.Original) {
		score = o.OriginalScore
	} else if containsAny(text, o.Common) {
		score = o.CommonScore
	}
	if containsAny(text, o.Copied) {
		score = o.CopiedScore
	}
	if containsAny(text, o.Boost) {
		score = min(100, score+o.BoostDelta)
	}
	return score
}

func sumRules(rules []Rule, text string) int {
	total := 0
	for _, r := range rules {
		total += r.apply(text)
	}
	return total
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// countAll counts non-overlapping matches of any phrase, scanning left to
// right the way an alternation regex does.
func countAll(text string, phrases []string) int {
	n := 0
	for i := 0; i < len(text); {
		matched := 0
		for _, p := range phrases {
			if p != "" && strings.HasPrefix(text[i:], p) {
				matched = len(p)
				break
			}
		}
		if matched > 0 {
			n++
			i += matched
			continue
		}
		i++
	}
	return n
}

func clamp(v int) int {
	return max(0, min(100, v))
}
