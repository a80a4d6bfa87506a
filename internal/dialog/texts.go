package dialog

import (
	"fmt"

	"habitbot-api/internal/user"
)

const textWelcome = "Привет! 👋\n\n" +
	"Я бот, который помогает следить за привычкой грызть ногти и разбирать причины, когда это происходит.\n\n" +
	"Вот как со мной работать:\n\n" +
	"1️⃣ <b>Записать момент</b>\n" +
	"   Нажми кнопку 📌 или используй команду /pogryz, чтобы написать, что произошло.\n\n" +
	"2️⃣ <b>Вечерний разбор</b>\n" +
	"   Я буду напоминать вечером:\n" +
	"   - ✅ Да — ногти целы, покажу твою текущую серию дней без грызения.\n" +
	"   - ❌ Нет — сразу разберём ситуацию и причины.\n\n" +
	"3️⃣ <b>Статистика</b>\n" +
	"   Показываю только текущую и максимальную серии дней без грызения.\n\n" +
	"4️⃣ <b>Время вечернего разбора</b>\n"

const (
	textAskName      = "Как тебя зовут? Напиши своё имя 🙂"
	textNameTooShort = "Имя слишком короткое. Напиши ещё раз 🙂"
	textAskGender    = "Приятно познакомиться! Выбери вариант:"
	textAskTime      = "Давай установим удобное время для вечернего разбора. Напиши в формате ЧЧ:ММ, например 21:30"
	textBadTime      = "Формат неверный. Пример: 21:30"
	textAskTimezone  = "Выбери свой часовой пояс:"

	textMomentPrompt = "Опиши, что случилось в этот момент:"
	textMomentSaved  = "Событие записано ✅"
	textNoEvents     = "Сегодня нет записанных моментов. Это хороший знак 💪"

	textReviewQuestion = "Что стало причиной? Какие чувства были?"
	textReviewNudge    = "Время вечернего разбора! Давай разберём все события /review"
	textIntegrity      = "Целостны ли твои ногти сейчас?"

	textNoReasonPrompt = "Опиши, что произошло и что стало причиной:"
	textRestart        = "Напиши /start 🙌"
	textMainMenu       = "Главное меню 👇"
	textAskNewTime     = "Напиши новое время в формате ЧЧ:ММ, например 21:30"

	textCheckinOK  = "Отлично! Так держать 💪"
	textCheckinBad = "Расскажи, что случилось:"

	textSettings = "Настройки:"

	textPaywall = "Чтобы пользоваться ботом, нужна подписка 🙏\n\n" +
		"Можно начать с бесплатного пробного периода или сразу оформить подписку."
	textTrialUsed     = "Пробный период уже был использован 🙈"
	textPayLink       = "Оплати подписку по ссылке ниже 👇"
	textPaymentFailed = "Не получилось создать платёж, попробуй позже 🙏"

	textBroadcastPrompt = "Напиши текст рассылки:"
)

func textTimeSaved(reviewTime string) string {
	return fmt.Sprintf("Отлично! Буду напоминать каждый день в %s 🕰", reviewTime)
}

func textSetupDone(reviewTime, city string) string {
	return fmt.Sprintf("Готово! Буду напоминать каждый день в %s (%s) 🕰\n\nЯ готов помочь отслеживать твою привычку 🙌", reviewTime, city)
}

func textTimezoneSaved(city string) string {
	return fmt.Sprintf("Часовой пояс: %s ✅", city)
}

func textAlreadyConfigured(reviewTime string) string {
	return fmt.Sprintf("Напоминания настроены на %s 🕰\n\nЯ готов помочь отслеживать твою привычку 🙌", reviewTime)
}

func textReviewFirst(eventText string) string {
	return fmt.Sprintf("Давай разберём все сегодняшние события:\n\n<i>%s</i>\n\n%s", eventText, textReviewQuestion)
}

func textReviewNext(eventText string) string {
	return fmt.Sprintf("Следующий момент:\n\n<i>%s</i>\n\n%s", eventText, textReviewQuestion)
}

// genderEnding returns the feminine past-tense suffix when applicable.
func genderEnding(u *user.User) string {
	if u.IsFemale != nil && *u.IsFemale {
		return "а"
	}
	return ""
}

func textReviewDone(u *user.User) string {
	return fmt.Sprintf("Отлично! Ты разобрал%s все моменты дня 🙌", genderEnding(u))
}

func textStreak(u *user.User) string {
	return fmt.Sprintf("Молодец! Продолжай в том же духе 💪\n\n"+
		"Текущая серия дней без грызения: %d\nМаксимальная серия: %d",
		u.CurrentStreak, u.MaxStreak)
}

func textStreakAlreadyCounted(u *user.User) string {
	return fmt.Sprintf("Сегодня уже засчитано ✅\n\n"+
		"Текущая серия дней без грызения: %d\nМаксимальная серия: %d",
		u.CurrentStreak, u.MaxStreak)
}

func textCheckin(u *user.User) string {
	if u.HasName() {
		return fmt.Sprintf("Привет, %s! Как проходит день? 🙂", u.Name)
	}
	return "Привет! Как проходит день? 🙂"
}

func textCheckinNoteSaved(u *user.User) string {
	return fmt.Sprintf("Спасибо, что поделил%s. Вечером разберём 🙌", genderedSharePast(u))
}

func genderedSharePast(u *user.User) string {
	if u.IsFemale != nil && *u.IsFemale {
		return "ась"
	}
	return "ся"
}

func textTrialStarted(endsAt string) string {
	return fmt.Sprintf("Пробный период активирован до %s 🎉", endsAt)
}

func textPaymentThanks(endsAt string) string {
	return fmt.Sprintf("Оплата прошла успешно! Подписка активна до %s 🎉", endsAt)
}

func textStats(users, events int64) string {
	return fmt.Sprintf("Пользователей: %d\nСобытий: %d", users, events)
}

func textBroadcastDone(sent, total int) string {
	return fmt.Sprintf("Рассылка отправлена: %d из %d ✅", sent, total)
}
