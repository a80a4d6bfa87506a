package dialog

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply-keyboard labels. These literal strings are intercepted before
// session-based free-text handling, so they must stay in sync with the
// keyboards below.
const (
	ButtonRecordMoment   = "📌 Записать момент"
	ButtonSettings       = "⚙️ Настройки"
	ButtonChangeTime     = "⏰ Изменить время вечернего разбора"
	ButtonChangeTimezone = "🌍 Изменить часовой пояс"
	ButtonBack           = "⬅️ Назад"
	ButtonStats          = "📊 Статистика"
	ButtonBroadcast      = "📢 Рассылка"
)

// timezone holds a selectable offset with its display city.
type timezone struct {
	City   string
	Offset int
}

// timezones lists the selectable Russian timezone offsets, west to east.
var timezones = []timezone{
	{"Калининград", 2},
	{"Москва", 3},
	{"Самара", 4},
	{"Екатеринбург", 5},
	{"Омск", 6},
	{"Красноярск", 7},
	{"Иркутск", 8},
	{"Якутск", 9},
	{"Владивосток", 10},
}

// timezoneCity returns the display name for an offset, or empty.
func timezoneCity(offset int) string {
	for _, tz := range timezones {
		if tz.Offset == offset {
			return tz.City
		}
	}
	return ""
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonRecordMoment)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonSettings)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func settingsKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonChangeTime)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonChangeTimezone)),
	}
	if isAdmin {
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonStats)),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonBroadcast)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonBack)))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// yesNoKeyboard is the evening integrity prompt's button set.
func yesNoKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да", encodeCallback(ActionYes, userID)),
			tgbotapi.NewInlineKeyboardButtonData("Нет", encodeCallback(ActionNo, userID)),
		),
	)
}

func checkinKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Всё отлично 👍", encodeCallback(ActionCheckinOK, userID)),
			tgbotapi.NewInlineKeyboardButtonData("Не очень 😔", encodeCallback(ActionCheckinBad, userID)),
		),
	)
}

func timezoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(timezones); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				timezoneLabel(timezones[i]),
				encodeCallback(ActionTimezone, int64(timezones[i].Offset))),
		}
		if i+1 < len(timezones) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				timezoneLabel(timezones[i+1]),
				encodeCallback(ActionTimezone, int64(timezones[i+1].Offset))))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func timezoneLabel(tz timezone) string {
	return fmt.Sprintf("%s (UTC+%d)", tz.City, tz.Offset)
}

func genderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Парень 👦", encodeCallback(ActionGender, 0)),
			tgbotapi.NewInlineKeyboardButtonData("Девушка 👧", encodeCallback(ActionGender, 1)),
		),
	)
}

// paywallKeyboard offers the trial only to users who have not used it.
func paywallKeyboard(trialAvailable bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if trialAvailable {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Попробовать бесплатно", encodeCallback(ActionTrial, 0))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💳 Оформить подписку", encodeCallback(ActionPay, 0))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// payLinkKeyboard carries the checkout confirmation URL.
func payLinkKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Оплатить 💳", url),
		),
	)
}
