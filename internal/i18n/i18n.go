// Package i18n resolves (language, key) pairs to display strings.
//
// The three language tables must stay symmetric: every key present in one
// table is present in all of them. Asymmetry is a data bug caught by tests,
// not handled at runtime.
package i18n

import "strings"

// Supported languages. DefaultLanguage is used when the requested language
// is unknown and when a language selector input matches nothing.
const (
	LangRU = "ru"
	LangUZ = "uz"
	LangEN = "en"

	DefaultLanguage = LangRU
)

// Message keys.
const (
	KeyWelcome         = "welcome"
	KeyChooseLanguage  = "choose_language"
	KeyMainMenu        = "main_menu"
	KeyAddCompany      = "add_company"
	KeyDownloadForm    = "download_form"
	KeyCorrectData     = "correct_data"
	KeyAdvertising     = "advertising"
	KeySendMessage     = "send_message"
	KeyShareContact    = "share_contact"
	KeyShareButton     = "share_button"
	KeyEnterName       = "enter_name"
	KeyEnterCompany    = "enter_company"
	KeyAddCompanyInfo  = "add_company_info"
	KeyFormSent        = "form_sent"
	KeyEnterCompanyURL = "enter_company_url"
	KeyEnterCorrection = "enter_correction"
	KeyEnterAdRequest  = "enter_ad_request"
	KeyEnterContact    = "enter_contact_info"
	KeyEnterFreeMsg    = "enter_free_message"
	KeyThankYou        = "thank_you"
	KeyBackToMenu      = "back_to_menu"
	KeyCancel          = "cancel"
	KeyRequestNumber   = "request_number"
	KeyReplyPrefix     = "reply_prefix"
)

var texts = map[string]map[string]string{
	LangRU: {
		KeyWelcome:         "Добро пожаловать! Выберите язык:\nXush kelibsiz! Tilni tanlang:\nWelcome! Choose language:",
		KeyChooseLanguage:  "Выберите язык:",
		KeyMainMenu:        "Выберите действие:",
		KeyAddCompany:      "➕ Добавить компанию",
		KeyDownloadForm:    "📥 Скачать анкету",
		KeyCorrectData:     "✏️ Исправить данные",
		KeyAdvertising:     "📢 Реклама",
		KeySendMessage:     "💬 Отправить сообщение",
		KeyShareContact:    "Для продолжения, пожалуйста, поделитесь контактом",
		KeyShareButton:     "📱 Поделиться контактом",
		KeyEnterName:       "Введите ваше ФИО:",
		KeyEnterCompany:    "Введите название вашей компании:",
		KeyAddCompanyInfo:  "Чтобы добавить компанию на сайт, вам нужно:\n\n1. Скачать анкету\n2. Распечатать и подписать\n3. Отправить на почту info@pc.uz или в этот телеграм бот\n\nИспользуйте кнопку \"Скачать анкету\" в главном меню.",
		KeyFormSent:        "Анкета отправлена! Заполните её и отправьте нам.",
		KeyEnterCompanyURL: "Укажите название вашей компании и URL страницы на сайте:",
		KeyEnterCorrection: "Что вы хотели бы исправить? (подробно опишите)",
		KeyEnterAdRequest:  "Напишите свой запрос по рекламе:",
		KeyEnterContact:    "Оставьте ваши контактные данные для связи:",
		KeyEnterFreeMsg:    "Введите ваше сообщение:",
		KeyThankYou:        "Спасибо! Ваше обращение принято. Мы свяжемся с вами в ближайшее время.",
		KeyBackToMenu:      "↩️ Вернуться в меню",
		KeyCancel:          "❌ Отмена",
		KeyRequestNumber:   "Номер заявки",
		KeyReplyPrefix:     "Ответ на вашу заявку",
	},
	LangUZ: {
		KeyWelcome:         "Добро пожаловать! Выберите язык:\nXush kelibsiz! Tilni tanlang:\nWelcome! Choose language:",
		KeyChooseLanguage:  "Tilni tanlang:",
		KeyMainMenu:        "Amalni tanlang:",
		KeyAddCompany:      "➕ Kompaniya qo'shish",
		KeyDownloadForm:    "📥 Anketani yuklab olish",
		KeyCorrectData:     "✏️ Ma'lumotlarni tuzatish",
		KeyAdvertising:     "📢 Reklama",
		KeySendMessage:     "💬 Xabar yuborish",
		KeyShareContact:    "Davom etish uchun kontaktingizni ulashing",
		KeyShareButton:     "📱 Kontaktni ulashish",
		KeyEnterName:       "F.I.O. kiriting:",
		KeyEnterCompany:    "Kompaniya nomini kiriting:",
		KeyAddCompanyInfo:  "Saytga kompaniya qo'shish uchun:\n\n1. Anketani yuklab oling\n2. Chop eting va imzolang\n3. info@pc.uz pochtasiga yoki ushbu telegram botga yuboring\n\nBosh menyudagi \"Anketani yuklab olish\" tugmasidan foydalaning.",
		KeyFormSent:        "Anketa yuborildi! Uni to'ldiring va bizga yuboring.",
		KeyEnterCompanyURL: "Kompaniyangiz nomi va saytdagi sahifa URL manzilini ko'rsating:",
		KeyEnterCorrection: "Nimani tuzatmoqchisiz? (batafsil yozing)",
		KeyEnterAdRequest:  "Reklama bo'yicha so'rovingizni yozing:",
		KeyEnterContact:    "Bog'lanish uchun kontakt ma'lumotlaringizni qoldiring:",
		KeyEnterFreeMsg:    "Xabaringizni kiriting:",
		KeyThankYou:        "Rahmat! Murojaatingiz qabul qilindi. Tez orada siz bilan bog'lanamiz.",
		KeyBackToMenu:      "↩️ Menyuga qaytish",
		KeyCancel:          "❌ Bekor qilish",
		KeyRequestNumber:   "Ariza raqami",
		KeyReplyPrefix:     "Arizangizga javob",
	},
	LangEN: {
		KeyWelcome:         "Добро пожаловать! Выберите язык:\nXush kelibsiz! Tilni tanlang:\nWelcome! Choose language:",
		KeyChooseLanguage:  "Choose language:",
		KeyMainMenu:        "Select action:",
		KeyAddCompany:      "➕ Add company",
		KeyDownloadForm:    "📥 Download form",
		KeyCorrectData:     "✏️ Correct data",
		KeyAdvertising:     "📢 Advertising",
		KeySendMessage:     "💬 Send message",
		KeyShareContact:    "To continue, please share your contact",
		KeyShareButton:     "📱 Share contact",
		KeyEnterName:       "Enter your full name:",
		KeyEnterCompany:    "Enter your company name:",
		KeyAddCompanyInfo:  "To add a company to the site:\n\n1. Download the form\n2. Print and sign\n3. Send to info@pc.uz or to this telegram bot\n\nUse \"Download form\" button in the main menu.",
		KeyFormSent:        "Form sent! Fill it and send back to us.",
		KeyEnterCompanyURL: "Specify your company name and website URL:",
		KeyEnterCorrection: "What would you like to correct? (describe in detail)",
		KeyEnterAdRequest:  "Write your advertising request:",
		KeyEnterContact:    "Leave your contact information:",
		KeyEnterFreeMsg:    "Enter your message:",
		KeyThankYou:        "Thank you! Your request has been received. We will contact you soon.",
		KeyBackToMenu:      "↩️ Back to menu",
		KeyCancel:          "❌ Cancel",
		KeyRequestNumber:   "Request number",
		KeyReplyPrefix:     "Reply to your request",
	},
}

// Languages returns the supported language codes.
func Languages() []string {
	return []string{LangRU, LangUZ, LangEN}
}

// Known reports whether lang is a supported language code.
func Known(lang string) bool {
	_, ok := texts[lang]
	return ok
}

// Resolve returns the display string for (lang, key). An unknown language
// falls back to DefaultLanguage. An unknown key is a programming error; in
// production it degrades to returning the key literal.
func Resolve(lang, key string) string {
	table, ok := texts[lang]
	if !ok {
		table = texts[DefaultLanguage]
	}
	if s, ok := table[key]; ok {
		return s
	}
	return key
}

// Keys returns all message keys of one language table (used by tests to
// assert table symmetry).
func Keys(lang string) []string {
	table := texts[lang]
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	return keys
}

// MatchLanguage maps a language-selector input to a language code. Matching
// is by flag emblem or name substring, case-insensitive. Unmatched input
// selects DefaultLanguage rather than re-prompting; this mirrors the
// original bot and is asserted by tests.
func MatchLanguage(input string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(input, "🇷🇺"), strings.Contains(lower, "русский"):
		return LangRU
	case strings.Contains(input, "🇺🇿"), strings.Contains(lower, "uzbek"), strings.Contains(lower, "o'zbek"), strings.Contains(lower, "o‘zbek"):
		return LangUZ
	case strings.Contains(input, "🇬🇧"), strings.Contains(lower, "english"):
		return LangEN
	default:
		return DefaultLanguage
	}
}
