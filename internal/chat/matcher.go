// Package chat turns free-text user messages into chatbot replies: canned
// greeting and thanks responses, FAQ answers found through the lexical
// index, or a fixed fallback.
package chat

import (
	"strings"

	"github.com/Skufu/healthdesk/internal/faq"
	"github.com/Skufu/healthdesk/internal/lexical"
)

// AcceptanceThreshold is the similarity a match must exceed to be answered.
const AcceptanceThreshold = 0.25

type Outcome string

const (
	OutcomeGreeting Outcome = "greeting"
	OutcomeThanks   Outcome = "thanks"
	OutcomeAnswered Outcome = "answered"
	OutcomeFallback Outcome = "fallback"
)

const FallbackMessage = "Üzgünüm, sorunuz için kesin bir bilgi bulamadım.\n\n" +
	"Size yardımcı olabileceğim bazı konular:\n" +
	"• Adet düzensizlikleri\n" +
	"• Gebelik ve doğum\n" +
	"• Menopoz\n" +
	"• Kadın hastalıkları\n" +
	"• HPV ve smear testleri\n\n" +
	"Daha spesifik bir soru sorabilir misiniz?"

var (
	defaultGreetingKeywords = []string{
		"merhaba", "selam", "hello", "hi", "iyi günler", "günaydın",
		"iyi akşamlar", "selamlar", "selamun aleyküm",
	}
	defaultGreetingResponses = []string{
		"Merhaba! Kadın sağlığı konusunda size nasıl yardımcı olabilirim?",
		"Selam! Sağlık sorularınızı yanıtlamak için buradayım.",
		"İyi günler! Kadın sağlığıyla ilgili sorularınızı sorabilirsiniz.",
	}
	defaultThanksKeywords = []string{
		"teşekkür", "teşekkürler", "sağol", "sağolun", "thanks",
		"thank you", "merci", "eyvallah",
	}
	defaultThanksResponses = []string{
		"Rica ederim, her zaman buradayım!",
		"Bir şey değil, sağlığınız her şeyden önemli.",
		"Memnun oldum yardımcı olabildiysem!",
	}
)

// Searcher is the read side of the lexical index.
type Searcher interface {
	Query(text string) lexical.Match
	Entry(i int) faq.Entry
}

// Reply is a chatbot response together with how it was produced.
type Reply struct {
	Text    string
	Outcome Outcome
	Score   float64
	Entry   int
}

// Matcher answers messages. It holds no per-conversation state and is safe
// for concurrent use once constructed.
type Matcher struct {
	searcher          Searcher
	composer          *Composer
	selector          Selector
	greetingKeywords  []string
	greetingResponses []string
	thanksKeywords    []string
	thanksResponses   []string
}

// NewMatcher returns a Matcher over searcher. A nil searcher is valid: only
// shortcut and fallback replies are produced.
func NewMatcher(searcher Searcher, sel Selector) *Matcher {
	if sel == nil {
		sel = RandomSelector{}
	}
	return &Matcher{
		searcher:          searcher,
		composer:          NewComposer(sel),
		selector:          sel,
		greetingKeywords:  defaultGreetingKeywords,
		greetingResponses: defaultGreetingResponses,
		thanksKeywords:    defaultThanksKeywords,
		thanksResponses:   defaultThanksResponses,
	}
}

// Respond returns the reply text for raw.
func (m *Matcher) Respond(raw string) string {
	return m.Reply(raw).Text
}

func (m *Matcher) Reply(raw string) Reply {
	message := strings.ToLower(strings.TrimSpace(raw))

	if containsAny(message, m.greetingKeywords) {
		return Reply{Text: choose(m.selector, m.greetingResponses), Outcome: OutcomeGreeting, Entry: -1}
	}
	if containsAny(message, m.thanksKeywords) {
		return Reply{Text: choose(m.selector, m.thanksResponses), Outcome: OutcomeThanks, Entry: -1}
	}

	if m.searcher == nil {
		return Reply{Text: FallbackMessage, Outcome: OutcomeFallback, Entry: -1}
	}

	match := m.searcher.Query(message)
	if match.Index < 0 || match.Score <= AcceptanceThreshold {
		return Reply{Text: FallbackMessage, Outcome: OutcomeFallback, Score: match.Score, Entry: -1}
	}

	answer := m.searcher.Entry(match.Index).Answer
	return Reply{
		Text:    m.composer.Compose(answer),
		Outcome: OutcomeAnswered,
		Score:   match.Score,
		Entry:   match.Index,
	}
}

func containsAny(message string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(message, k) {
			return true
		}
	}
	return false
}
