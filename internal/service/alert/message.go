package alert

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Russian)

// formatRUB 가격을 러시아식 자릿수 구분으로 표기합니다. (예: 12990 → "12 990 ₽")
func formatRUB(v float64) string {
	return printer.Sprintf("%v ₽", number.Decimal(v, number.MaxFractionDigits(0)))
}

// RenderMessage 가격 하락 알림 메시지(HTML)를 만듭니다.
func RenderMessage(productName, storeName, productURL string, previous, current float64) string {
	var sb strings.Builder

	sb.WriteString("🔔 <b>Цена снизилась!</b>\n\n")
	sb.WriteString("📦 " + tgbotapi.EscapeText(tgbotapi.ModeHTML, productName) + "\n")
	if storeName != "" {
		sb.WriteString("🏬 " + tgbotapi.EscapeText(tgbotapi.ModeHTML, storeName) + "\n")
	}
	sb.WriteString("💰 Было: " + formatRUB(previous) + "\n")
	sb.WriteString("✅ Стало: " + formatRUB(current) + "\n")
	sb.WriteString("📉 Экономия: " + formatRUB(previous-current) + "\n\n")
	sb.WriteString("🛒 <a href=\"" + tgbotapi.EscapeText(tgbotapi.ModeHTML, productURL) + "\">Купить сейчас</a>")

	return sb.String()
}
