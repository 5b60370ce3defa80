package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"สวัสดีครับ", IntentGreeting},
		{"สวัสดีค่ะ", IntentGreeting},
		{"hello", IntentGreeting},
		{"Hi there", IntentGreeting},
		{"hey", IntentGreeting},
		{"เริ่มใหม่", IntentReset},
		{"reset", IntentReset},
		{"ล้างประวัติหน่อย", IntentReset},
		{"ขอดูตารางราคา", IntentPriceTable},
		{"price list", IntentPriceTable},
		{"ราคาทั้งหมดเท่าไหร่", IntentPriceTable},
		{"A4 ขาวดำ หน้าเดียว 50 หน้า", IntentNone},
		{"ร้านเปิดกี่โมง", IntentNone},
		// "hi" must not fire inside other words.
		{"this is a question", IntentNone},
		{"high quality print", IntentNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.message), "message %q", tt.message)
	}
}

func TestClassify_ResetBeatsGreeting(t *testing.T) {
	// A message carrying both a greeting and a command: the command wins.
	assert.Equal(t, IntentReset, Classify("สวัสดีครับ ขอเริ่มใหม่"))
}
