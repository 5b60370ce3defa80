package bot

import (
	"regexp"
	"strings"
)

// MESSAGE CLASSIFIER

// Intent is the pre-extraction classification of a message. These
// short-circuits run before the price extractor so that greetings and
// commands never reach it.
type Intent int

const (
	IntentNone Intent = iota
	IntentGreeting
	IntentReset
	IntentPriceTable
)

var (
	greetingThai = []string{"สวัสดี", "หวัดดี"}
	resetTokens  = []string{"เริ่มใหม่", "เริ่มต้นใหม่", "ล้างประวัติ", "reset"}
	tableTokens  = []string{"ตารางราคา", "ราคาทั้งหมด", "price list", "price table"}

	// Short English greetings need word boundaries; a bare substring check
	// on "hi" would fire on words like "this".
	greetingEnglish = regexp.MustCompile(`(?i)\b(hi|hello|hey)\b`)
)

// Classify returns the first matching intent, checked most specific first.
func Classify(message string) Intent {
	lower := strings.ToLower(message)

	for _, tok := range resetTokens {
		if strings.Contains(lower, tok) {
			return IntentReset
		}
	}
	for _, tok := range tableTokens {
		if strings.Contains(lower, tok) {
			return IntentPriceTable
		}
	}
	for _, tok := range greetingThai {
		if strings.Contains(lower, tok) {
			return IntentGreeting
		}
	}
	if greetingEnglish.MatchString(message) {
		return IntentGreeting
	}
	return IntentNone
}
