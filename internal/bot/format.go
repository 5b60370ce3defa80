package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"copyshop-bot/internal/pricing"
)

// REPLY FORMATTING (THAI)

// Monetary values are exact decimals until this point; replies round the
// totals to 2 decimal places.

func colorLabel(c pricing.ColorMode) string {
	if c == pricing.ColorFull {
		return "สี"
	}
	return "ขาวดำ"
}

func duplexLabel(d pricing.DuplexMode) string {
	if d == pricing.DuplexDouble {
		return "สองหน้า"
	}
	return "หน้าเดียว"
}

func comboLabel(size pricing.PaperSize, color pricing.ColorMode, duplex pricing.DuplexMode) string {
	return fmt.Sprintf("%s %s %s", size, colorLabel(color), duplexLabel(duplex))
}

// FormatQuote renders the price breakdown the way the shop has always
// answered: header, combination, quantity, then the money lines.
func FormatQuote(q pricing.Quote) string {
	var b strings.Builder
	b.WriteString("📊 คำนวณราคา:\n")
	fmt.Fprintf(&b, "🔸 %s\n", comboLabel(q.Request.Size, q.Request.Color, q.Request.Duplex))
	fmt.Fprintf(&b, "🔸 จำนวน: %d หน้า\n", q.Request.Quantity)
	fmt.Fprintf(&b, "🔸 ราคา: %d × %s = %s บาท\n", q.Request.Quantity, q.UnitPrice, q.Subtotal.StringFixed(2))
	if q.DiscountRate.IsPositive() {
		fmt.Fprintf(&b, "🔸 ส่วนลด %s%%: -%s บาท\n",
			q.DiscountRate.Mul(hundred), q.DiscountAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "🔸 ราคาสุทธิ: %s บาท", q.FinalPrice.StringFixed(2))
	return b.String()
}

var hundred = decimal.NewFromInt(100)

// FormatQuoteError maps each failure kind to its own customer message.
// A missing price additionally lists what can actually be ordered.
func FormatQuoteError(err *pricing.QuoteError, maxQuantity int) string {
	switch err.Kind {
	case pricing.FailureMissingField:
		return "ข้อมูลไม่ครบถ้วน กรุณาระบุขนาดกระดาษ สี และจำนวนหน้า เช่น \"A4 ขาวดำ หน้าเดียว 50 หน้า\""
	case pricing.FailureInvalidQuantity:
		return "จำนวนหน้าต้องเป็นตัวเลขที่มากกว่า 0 กรุณาลองใหม่อีกครั้ง"
	case pricing.FailureQuantityTooLarge:
		return fmt.Sprintf("จำนวนหน้ามากเกินไป (สั่งได้สูงสุด %d หน้า) สำหรับงานใหญ่กรุณาติดต่อร้านโดยตรง", maxQuantity)
	case pricing.FailurePriceNotFound:
		var b strings.Builder
		b.WriteString("ไม่พบข้อมูลราคาสำหรับตัวเลือกนี้\n\n💰 ตัวเลือกที่ให้บริการ:\n")
		writeTableLines(&b, err.Available)
		return b.String()
	default:
		return "ขออภัย ไม่สามารถคำนวณราคาได้ กรุณาลองใหม่อีกครั้ง"
	}
}

// FormatPriceTable renders the full price list.
func FormatPriceTable(table *pricing.Table) string {
	var b strings.Builder
	b.WriteString("💰 ตารางราคาถ่ายเอกสาร:\n")
	writeTableLines(&b, table.Available())
	return strings.TrimRight(b.String(), "\n")
}

func writeTableLines(b *strings.Builder, entries []pricing.Entry) {
	for _, e := range entries {
		fmt.Fprintf(b, "• %s: %s บาท/หน้า\n", comboLabel(e.Size, e.Color, e.Duplex), e.PricePerUnit)
	}
}

// GreetingMessage is the canned answer to a greeting, with usage examples.
func GreetingMessage() string {
	return "สวัสดีค่ะ! 😊\nยินดีให้บริการคำนวณราคาถ่ายเอกสาร\n\n" +
		"ตัวอย่างการถาม:\n\"A4 ขาวดำ หน้าเดียว 50 หน้า\"\n\"A3 สี สองหน้า 20 แผ่น\""
}

// ResetMessage confirms the conversation history was cleared.
func ResetMessage() string {
	return "เริ่มการสนทนาใหม่แล้วค่ะ 🔄 มีอะไรให้ช่วยคำนวณราคาไหมคะ"
}

// RateLimitMessage asks the customer to slow down.
func RateLimitMessage() string {
	return "ขออภัยค่ะ คุณส่งข้อความเร็วเกินไป กรุณารอสักครู่แล้วลองใหม่อีกครั้ง 🙏"
}

// HelpMessage is the fallback for messages the bot does not understand:
// the question format plus the current price list.
func HelpMessage(table *pricing.Table) string {
	return "📝 ไม่เข้าใจคำถาม กรุณาถามในรูปแบบ:\n\n" +
		"\"A4 ขาวดำ หน้าเดียว 50 หน้า\"\n\"A3 สี สองหน้า 20 แผ่น\"\n\n" +
		FormatPriceTable(table)
}
