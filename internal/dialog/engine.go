package dialog

import (
	"fmt"
	"strconv"

	"github.com/spravuz/spravbot/internal/gateway"
	"github.com/spravuz/spravbot/internal/i18n"
	"github.com/spravuz/spravbot/internal/models"
	"github.com/spravuz/spravbot/internal/store"
)

// Effect is a side-effecting action requested by a transition. The engine
// itself never touches storage; the caller applies the effect and must
// complete it before persisting the new dialogue state.
type Effect interface {
	isEffect()
}

// EffectUpsertUser asks the caller to create or overwrite a user row.
type EffectUpsertUser struct {
	User models.User
}

// EffectCreateRequest asks the caller to create exactly one request. Every
// sub-dialogue branch ends in at most one of these, and none on cancel.
type EffectCreateRequest struct {
	UserID  int64
	Payload store.Payload
}

func (EffectUpsertUser) isEffect()    {}
func (EffectCreateRequest) isEffect() {}

// Result is the outcome of one conversation turn.
type Result struct {
	State   DialogueState
	Prompts []gateway.OutboundPrompt
	Effect  Effect
}

// stepFunc computes the transition for one state. Handlers are pure: they
// read the (already cloned) state and the input, and return the result.
type stepFunc func(d DialogueState, ev gateway.InboundEvent) Result

// transitions is the state → handler table. Keeping it as data makes
// exhaustive-state tests straightforward.
var transitions = map[State]stepFunc{
	StateAwaitingLanguage:          stepLanguage,
	StateAwaitingContact:           stepContact,
	StateAwaitingFullName:          stepFullName,
	StateAwaitingCompanyName:       stepCompanyName,
	StateMainMenu:                  stepMainMenu,
	StateAwaitingCorrectionTarget:  stepCorrectionTarget,
	StateAwaitingCorrectionDetails: stepCorrectionDetails,
	StateAwaitingAdRequest:         stepAdRequest,
	StateAwaitingAdContact:         stepAdContact,
	StateAwaitingFreeMessage:       stepFreeMessage,
}

// Step computes one conversation turn. Malformed or out-of-band input never
// fails: it re-prompts or no-ops in place. Commands restart the dialogue
// from the language prompt in any state.
func Step(d DialogueState, ev gateway.InboundEvent) Result {
	d.Scratch = cloneScratch(d.Scratch)

	if ev.Kind == gateway.KindCommand {
		return restart(d)
	}

	handler, ok := transitions[d.Current]
	if !ok {
		// Unknown state (e.g. after a code change): restart cleanly.
		return restart(d)
	}
	return handler(d, ev)
}

// restart resets the dialogue to the entry state and shows the trilingual
// welcome with the language keyboard.
func restart(d DialogueState) Result {
	next := NewDialogueState(d.Identity)
	return Result{
		State: next,
		Prompts: []gateway.OutboundPrompt{{
			Identity: d.Identity,
			Text:     i18n.Resolve(i18n.DefaultLanguage, i18n.KeyWelcome),
			Keyboard: languageKeyboard(),
		}},
	}
}

func stepLanguage(d DialogueState, ev gateway.InboundEvent) Result {
	// Unmatched input selects the default language rather than
	// re-prompting.
	d.Language = i18n.MatchLanguage(ev.Text)
	d.Current = StateAwaitingContact
	return Result{
		State: d,
		Prompts: []gateway.OutboundPrompt{{
			Identity: d.Identity,
			Text:     i18n.Resolve(d.Language, i18n.KeyShareContact),
			Keyboard: contactKeyboard(d.Language),
		}},
	}
}

func stepContact(d DialogueState, ev gateway.InboundEvent) Result {
	if ev.Kind != gateway.KindContact || ev.Contact == nil {
		// Plain text where a contact payload was required: self-loop.
		return Result{
			State: d,
			Prompts: []gateway.OutboundPrompt{{
				Identity: d.Identity,
				Text:     i18n.Resolve(d.Language, i18n.KeyShareContact),
				Keyboard: contactKeyboard(d.Language),
			}},
		}
	}
	d.Scratch[scratchPhone] = ev.Contact.Phone
	d.Scratch[scratchContactID] = strconv.FormatInt(ev.Contact.NumericID, 10)
	d.Scratch[scratchHandle] = ev.Contact.Handle
	d.Current = StateAwaitingFullName
	return Result{
		State: d,
		Prompts: []gateway.OutboundPrompt{{
			Identity: d.Identity,
			Text:     i18n.Resolve(d.Language, i18n.KeyEnterName),
			Keyboard: gateway.KeyboardSpec{Remove: true},
		}},
	}
}

func stepFullName(d DialogueState, ev gateway.InboundEvent) Result {
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterName)
	}
	d.Scratch[scratchFullName] = ev.Text
	d.Current = StateAwaitingCompanyName
	return Result{
		State:   d,
		Prompts: []gateway.OutboundPrompt{{Identity: d.Identity, Text: i18n.Resolve(d.Language, i18n.KeyEnterCompany)}},
	}
}

func stepCompanyName(d DialogueState, ev gateway.InboundEvent) Result {
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterCompany)
	}

	// Upsert is keyed by the numeric identity captured with the contact;
	// if the contact payload carried none, the chat identity stands in.
	userID := d.Identity
	if raw, ok := d.Scratch[scratchContactID]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id != 0 {
			userID = id
		}
	}
	effect := EffectUpsertUser{User: models.User{
		TelegramID: userID,
		Phone:      d.Scratch[scratchPhone],
		FullName:   d.Scratch[scratchFullName],
		Company:    ev.Text,
		Username:   d.Scratch[scratchHandle],
		Language:   d.Language,
	}}

	d.Scratch = map[string]string{}
	d.Current = StateMainMenu
	return Result{
		State:   d,
		Prompts: []gateway.OutboundPrompt{menuPrompt(d)},
		Effect:  effect,
	}
}

func stepMainMenu(d DialogueState, ev gateway.InboundEvent) Result {
	if ev.Kind != gateway.KindText {
		return Result{State: d}
	}
	lang := d.Language
	switch ev.Text {
	case i18n.Resolve(lang, i18n.KeyAddCompany):
		return Result{
			State: d,
			Prompts: []gateway.OutboundPrompt{{
				Identity: d.Identity,
				Text:     i18n.Resolve(lang, i18n.KeyAddCompanyInfo),
				Keyboard: backToMenuKeyboard(lang),
			}},
		}
	case i18n.Resolve(lang, i18n.KeyDownloadForm):
		return Result{
			State: d,
			Prompts: []gateway.OutboundPrompt{{
				Identity: d.Identity,
				Text:     i18n.Resolve(lang, i18n.KeyFormSent),
				Keyboard: backToMenuKeyboard(lang),
			}},
		}
	case i18n.Resolve(lang, i18n.KeyCorrectData):
		d.Current = StateAwaitingCorrectionTarget
		return enterSubDialogue(d, i18n.KeyEnterCompanyURL)
	case i18n.Resolve(lang, i18n.KeyAdvertising):
		d.Current = StateAwaitingAdRequest
		return enterSubDialogue(d, i18n.KeyEnterAdRequest)
	case i18n.Resolve(lang, i18n.KeySendMessage):
		d.Current = StateAwaitingFreeMessage
		return enterSubDialogue(d, i18n.KeyEnterFreeMsg)
	case i18n.Resolve(lang, i18n.KeyBackToMenu):
		return Result{State: d, Prompts: []gateway.OutboundPrompt{menuPrompt(d)}}
	}
	// Unmatched menu input: no-op self-loop, nothing re-shown.
	return Result{State: d}
}

func stepCorrectionTarget(d DialogueState, ev gateway.InboundEvent) Result {
	if cancelled(d, ev) {
		return backToMenu(d)
	}
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterCompanyURL)
	}
	d.Scratch[scratchCorrectionCompany] = ev.Text
	d.Current = StateAwaitingCorrectionDetails
	return Result{
		State:   d,
		Prompts: []gateway.OutboundPrompt{{Identity: d.Identity, Text: i18n.Resolve(d.Language, i18n.KeyEnterCorrection)}},
	}
}

func stepCorrectionDetails(d DialogueState, ev gateway.InboundEvent) Result {
	if cancelled(d, ev) {
		return backToMenu(d)
	}
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterCorrection)
	}
	effect := EffectCreateRequest{
		UserID: d.Identity,
		Payload: store.CorrectionPayload{
			CompanyInfo:       d.Scratch[scratchCorrectionCompany],
			CorrectionDetails: ev.Text,
		},
	}
	return completeSubDialogue(d, effect)
}

func stepAdRequest(d DialogueState, ev gateway.InboundEvent) Result {
	if cancelled(d, ev) {
		return backToMenu(d)
	}
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterAdRequest)
	}
	d.Scratch[scratchAdRequest] = ev.Text
	d.Current = StateAwaitingAdContact
	return Result{
		State:   d,
		Prompts: []gateway.OutboundPrompt{{Identity: d.Identity, Text: i18n.Resolve(d.Language, i18n.KeyEnterContact)}},
	}
}

func stepAdContact(d DialogueState, ev gateway.InboundEvent) Result {
	if cancelled(d, ev) {
		return backToMenu(d)
	}
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterContact)
	}
	effect := EffectCreateRequest{
		UserID: d.Identity,
		Payload: store.AdvertisingPayload{
			AdRequest:   d.Scratch[scratchAdRequest],
			ContactInfo: ev.Text,
		},
	}
	return completeSubDialogue(d, effect)
}

func stepFreeMessage(d DialogueState, ev gateway.InboundEvent) Result {
	if cancelled(d, ev) {
		return backToMenu(d)
	}
	if ev.Kind != gateway.KindText || ev.Text == "" {
		return reprompt(d, i18n.KeyEnterFreeMsg)
	}
	effect := EffectCreateRequest{
		UserID:  d.Identity,
		Payload: store.MessagePayload{Message: ev.Text},
	}
	return completeSubDialogue(d, effect)
}

// cancelled reports whether the input is the localized cancel affordance.
func cancelled(d DialogueState, ev gateway.InboundEvent) bool {
	return ev.Kind == gateway.KindText && ev.Text == i18n.Resolve(d.Language, i18n.KeyCancel)
}

// backToMenu discards the sub-dialogue scratch and returns to the menu
// without creating anything.
func backToMenu(d DialogueState) Result {
	d.Scratch = map[string]string{}
	d.Current = StateMainMenu
	return Result{State: d, Prompts: []gateway.OutboundPrompt{menuPrompt(d)}}
}

// completeSubDialogue finishes a branch with its single create-request
// effect. The confirmation (with the allocated id) is sent by the caller
// via AckPrompt once the effect has been applied; the engine only queues
// the menu prompt.
func completeSubDialogue(d DialogueState, effect EffectCreateRequest) Result {
	d.Scratch = map[string]string{}
	d.Current = StateMainMenu
	return Result{
		State:   d,
		Prompts: []gateway.OutboundPrompt{menuPrompt(d)},
		Effect:  effect,
	}
}

// AckPrompt builds the thank-you confirmation carrying the new request id.
func AckPrompt(identity int64, lang string, requestID uint) gateway.OutboundPrompt {
	return gateway.OutboundPrompt{
		Identity: identity,
		Text: fmt.Sprintf("%s\n\n%s: #%d",
			i18n.Resolve(lang, i18n.KeyThankYou),
			i18n.Resolve(lang, i18n.KeyRequestNumber),
			requestID),
	}
}

func reprompt(d DialogueState, key string) Result {
	return Result{
		State:   d,
		Prompts: []gateway.OutboundPrompt{{Identity: d.Identity, Text: i18n.Resolve(d.Language, key)}},
	}
}

func enterSubDialogue(d DialogueState, promptKey string) Result {
	return Result{
		State: d,
		Prompts: []gateway.OutboundPrompt{{
			Identity: d.Identity,
			Text:     i18n.Resolve(d.Language, promptKey),
			Keyboard: cancelKeyboard(d.Language),
		}},
	}
}

func menuPrompt(d DialogueState) gateway.OutboundPrompt {
	return gateway.OutboundPrompt{
		Identity: d.Identity,
		Text:     i18n.Resolve(d.Language, i18n.KeyMainMenu),
		Keyboard: menuKeyboard(d.Language),
	}
}

func languageKeyboard() gateway.KeyboardSpec {
	return gateway.KeyboardSpec{
		Buttons: [][]gateway.Button{
			gateway.Row("🇷🇺 Русский"),
			gateway.Row("🇺🇿 O'zbekcha"),
			gateway.Row("🇬🇧 English"),
		},
		OneTime: true,
	}
}

func contactKeyboard(lang string) gateway.KeyboardSpec {
	return gateway.KeyboardSpec{
		Buttons: [][]gateway.Button{{
			{Label: i18n.Resolve(lang, i18n.KeyShareButton), RequestContact: true},
		}},
		OneTime: true,
	}
}

func menuKeyboard(lang string) gateway.KeyboardSpec {
	return gateway.KeyboardSpec{
		Buttons: [][]gateway.Button{
			gateway.Row(i18n.Resolve(lang, i18n.KeyAddCompany)),
			gateway.Row(i18n.Resolve(lang, i18n.KeyDownloadForm)),
			gateway.Row(i18n.Resolve(lang, i18n.KeyCorrectData)),
			gateway.Row(i18n.Resolve(lang, i18n.KeyAdvertising)),
			gateway.Row(i18n.Resolve(lang, i18n.KeySendMessage)),
		},
	}
}

func cancelKeyboard(lang string) gateway.KeyboardSpec {
	return gateway.KeyboardSpec{
		Buttons: [][]gateway.Button{gateway.Row(i18n.Resolve(lang, i18n.KeyCancel))},
	}
}

func backToMenuKeyboard(lang string) gateway.KeyboardSpec {
	return gateway.KeyboardSpec{
		Buttons: [][]gateway.Button{gateway.Row(i18n.Resolve(lang, i18n.KeyBackToMenu))},
	}
}

func cloneScratch(s map[string]string) map[string]string {
	out := make(map[string]string, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
