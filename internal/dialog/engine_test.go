package dialog

import (
	"strings"
	"testing"

	"github.com/spravuz/spravbot/internal/gateway"
	"github.com/spravuz/spravbot/internal/i18n"
	"github.com/spravuz/spravbot/internal/store"
)

func textEv(identity int64, text string) gateway.InboundEvent {
	return gateway.InboundEvent{Identity: identity, Kind: gateway.KindText, Text: text}
}

func contactEv(identity int64, phone string, numericID int64, handle string) gateway.InboundEvent {
	return gateway.InboundEvent{
		Identity: identity,
		Kind:     gateway.KindContact,
		Contact:  &gateway.ContactPayload{Phone: phone, NumericID: numericID, Handle: handle},
	}
}

func commandEv(identity int64, name string) gateway.InboundEvent {
	return gateway.InboundEvent{Identity: identity, Kind: gateway.KindCommand, Text: name}
}

// menuState returns a state resting in the main menu for the language.
func menuState(identity int64, lang string) DialogueState {
	st := NewDialogueState(identity)
	st.Current = StateMainMenu
	st.Language = lang
	return st
}

// runOnboarding drives the language→contact→name→company chain and returns
// the final result (whose effect is the user upsert).
func runOnboarding(t *testing.T, identity int64, langInput, phone string, numericID int64, handle, name, company string) Result {
	t.Helper()
	st := NewDialogueState(identity)

	res := Step(st, textEv(identity, langInput))
	if res.State.Current != StateAwaitingContact {
		t.Fatalf("after language: state = %q", res.State.Current)
	}
	res = Step(res.State, contactEv(identity, phone, numericID, handle))
	if res.State.Current != StateAwaitingFullName {
		t.Fatalf("after contact: state = %q", res.State.Current)
	}
	res = Step(res.State, textEv(identity, name))
	if res.State.Current != StateAwaitingCompanyName {
		t.Fatalf("after name: state = %q", res.State.Current)
	}
	res = Step(res.State, textEv(identity, company))
	if res.State.Current != StateMainMenu {
		t.Fatalf("after company: state = %q", res.State.Current)
	}
	return res
}

// ---------------------------------------------------------------------------
// Transition table tests
// ---------------------------------------------------------------------------

func TestTransitionTable_CoversAllStates(t *testing.T) {
	states := []State{
		StateAwaitingLanguage, StateAwaitingContact, StateAwaitingFullName,
		StateAwaitingCompanyName, StateMainMenu, StateAwaitingCorrectionTarget,
		StateAwaitingCorrectionDetails, StateAwaitingAdRequest,
		StateAwaitingAdContact, StateAwaitingFreeMessage,
	}
	if len(transitions) != len(states) {
		t.Errorf("transition table has %d entries, want %d", len(transitions), len(states))
	}
	for _, s := range states {
		if _, ok := transitions[s]; !ok {
			t.Errorf("no handler for state %q", s)
		}
	}
}

// ---------------------------------------------------------------------------
// Onboarding tests
// ---------------------------------------------------------------------------

func TestStep_LanguageSelection(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"🇬🇧 English", i18n.LangEN},
		{"🇺🇿 O'zbekcha", i18n.LangUZ},
		{"🇷🇺 Русский", i18n.LangRU},
		// The documented quirk: unmatched input selects ru.
		{"whatever", i18n.LangRU},
	}
	for _, tt := range tests {
		res := Step(NewDialogueState(1), textEv(1, tt.input))
		if res.State.Language != tt.want {
			t.Errorf("input %q: language = %q, want %q", tt.input, res.State.Language, tt.want)
		}
		if res.State.Current != StateAwaitingContact {
			t.Errorf("input %q: state = %q, want AWAITING_CONTACT", tt.input, res.State.Current)
		}
		if res.Effect != nil {
			t.Errorf("input %q: unexpected effect %T", tt.input, res.Effect)
		}
		if len(res.Prompts) != 1 || res.Prompts[0].Text != i18n.Resolve(tt.want, i18n.KeyShareContact) {
			t.Errorf("input %q: prompts = %+v", tt.input, res.Prompts)
		}
	}
}

func TestStep_ContactPromptRequestsContact(t *testing.T) {
	res := Step(NewDialogueState(1), textEv(1, "🇬🇧 English"))
	kb := res.Prompts[0].Keyboard
	if len(kb.Buttons) != 1 || len(kb.Buttons[0]) != 1 || !kb.Buttons[0][0].RequestContact {
		t.Errorf("contact keyboard = %+v, want one contact-request button", kb)
	}
}

func TestStep_ContactSelfLoopsOnText(t *testing.T) {
	st := NewDialogueState(1)
	st.Current = StateAwaitingContact
	st.Language = i18n.LangEN

	res := Step(st, textEv(1, "my number is 555"))
	if res.State.Current != StateAwaitingContact {
		t.Errorf("state = %q, want self-loop", res.State.Current)
	}
	if res.Effect != nil {
		t.Errorf("unexpected effect %T", res.Effect)
	}
	if len(res.Prompts) != 1 || res.Prompts[0].Text != i18n.Resolve(i18n.LangEN, i18n.KeyShareContact) {
		t.Errorf("prompts = %+v, want share-contact re-prompt", res.Prompts)
	}
}

func TestStep_OnboardingUpsertsUser(t *testing.T) {
	res := runOnboarding(t, 42, "🇬🇧 English", "+1555", 42, "jane", "Jane", "Acme")

	effect, ok := res.Effect.(EffectUpsertUser)
	if !ok {
		t.Fatalf("effect = %T, want EffectUpsertUser", res.Effect)
	}
	u := effect.User
	if u.TelegramID != 42 || u.Phone != "+1555" || u.FullName != "Jane" || u.Company != "Acme" {
		t.Errorf("user = %+v", u)
	}
	if u.Username != "jane" || u.Language != i18n.LangEN {
		t.Errorf("user = %+v", u)
	}
	if len(res.State.Scratch) != 0 {
		t.Errorf("scratch not discarded: %v", res.State.Scratch)
	}
}

func TestStep_OnboardingFallsBackToChatIdentity(t *testing.T) {
	// Contact payload without a numeric id: the chat identity stands in.
	res := runOnboarding(t, 42, "🇬🇧 English", "+1555", 0, "", "Jane", "Acme")
	effect := res.Effect.(EffectUpsertUser)
	if effect.User.TelegramID != 42 {
		t.Errorf("TelegramID = %d, want chat identity 42", effect.User.TelegramID)
	}
}

func TestStep_EmptyNameReprompts(t *testing.T) {
	st := NewDialogueState(1)
	st.Current = StateAwaitingFullName
	st.Language = i18n.LangEN

	res := Step(st, textEv(1, ""))
	if res.State.Current != StateAwaitingFullName {
		t.Errorf("state = %q, want self-loop", res.State.Current)
	}
	if res.Effect != nil {
		t.Errorf("unexpected effect %T", res.Effect)
	}
}

// ---------------------------------------------------------------------------
// Main menu tests
// ---------------------------------------------------------------------------

func TestStep_MenuInformationalItems(t *testing.T) {
	for _, key := range []string{i18n.KeyAddCompany, i18n.KeyDownloadForm} {
		st := menuState(1, i18n.LangEN)
		res := Step(st, textEv(1, i18n.Resolve(i18n.LangEN, key)))
		if res.State.Current != StateMainMenu {
			t.Errorf("%s: state = %q, want MAIN_MENU", key, res.State.Current)
		}
		if res.Effect != nil {
			t.Errorf("%s: unexpected effect %T", key, res.Effect)
		}
		if len(res.Prompts) != 1 {
			t.Errorf("%s: prompts = %d, want 1", key, len(res.Prompts))
		}
	}
}

func TestStep_MenuEntersSubDialogues(t *testing.T) {
	tests := []struct {
		itemKey string
		want    State
	}{
		{i18n.KeyCorrectData, StateAwaitingCorrectionTarget},
		{i18n.KeyAdvertising, StateAwaitingAdRequest},
		{i18n.KeySendMessage, StateAwaitingFreeMessage},
	}
	for _, tt := range tests {
		st := menuState(1, i18n.LangUZ)
		res := Step(st, textEv(1, i18n.Resolve(i18n.LangUZ, tt.itemKey)))
		if res.State.Current != tt.want {
			t.Errorf("%s: state = %q, want %q", tt.itemKey, res.State.Current, tt.want)
		}
		// Each sub-dialogue entry offers the cancel affordance.
		kb := res.Prompts[0].Keyboard
		if len(kb.Buttons) != 1 || kb.Buttons[0][0].Label != i18n.Resolve(i18n.LangUZ, i18n.KeyCancel) {
			t.Errorf("%s: keyboard = %+v, want cancel button", tt.itemKey, kb)
		}
	}
}

func TestStep_MenuUnmatchedIsNoOp(t *testing.T) {
	st := menuState(1, i18n.LangEN)
	res := Step(st, textEv(1, "gibberish"))
	if res.State.Current != StateMainMenu {
		t.Errorf("state = %q, want MAIN_MENU", res.State.Current)
	}
	if res.Effect != nil {
		t.Errorf("unmatched menu input created effect %T", res.Effect)
	}
	if len(res.Prompts) != 0 {
		t.Errorf("prompts = %+v, want none", res.Prompts)
	}
}

func TestStep_MenuBackToMenu(t *testing.T) {
	st := menuState(1, i18n.LangRU)
	res := Step(st, textEv(1, i18n.Resolve(i18n.LangRU, i18n.KeyBackToMenu)))
	if res.State.Current != StateMainMenu {
		t.Errorf("state = %q", res.State.Current)
	}
	if len(res.Prompts) != 1 || res.Prompts[0].Text != i18n.Resolve(i18n.LangRU, i18n.KeyMainMenu) {
		t.Errorf("prompts = %+v, want menu re-shown", res.Prompts)
	}
}

// ---------------------------------------------------------------------------
// Sub-dialogue tests
// ---------------------------------------------------------------------------

func TestStep_CorrectionBranch(t *testing.T) {
	st := menuState(1, i18n.LangEN)

	res := Step(st, textEv(1, i18n.Resolve(i18n.LangEN, i18n.KeyCorrectData)))
	res = Step(res.State, textEv(1, "Acme / acme.example.com"))
	if res.State.Current != StateAwaitingCorrectionDetails {
		t.Fatalf("state = %q", res.State.Current)
	}
	if res.Effect != nil {
		t.Fatalf("intermediate step created effect %T", res.Effect)
	}
	res = Step(res.State, textEv(1, "Fix phone number"))

	effect, ok := res.Effect.(EffectCreateRequest)
	if !ok {
		t.Fatalf("effect = %T, want EffectCreateRequest", res.Effect)
	}
	payload, ok := effect.Payload.(store.CorrectionPayload)
	if !ok {
		t.Fatalf("payload = %T", effect.Payload)
	}
	if payload.CompanyInfo != "Acme / acme.example.com" || payload.CorrectionDetails != "Fix phone number" {
		t.Errorf("payload = %+v", payload)
	}
	if res.State.Current != StateMainMenu {
		t.Errorf("state = %q, want MAIN_MENU", res.State.Current)
	}
	if len(res.State.Scratch) != 0 {
		t.Errorf("scratch not discarded: %v", res.State.Scratch)
	}
}

func TestStep_AdvertisingBranch(t *testing.T) {
	st := menuState(1, i18n.LangRU)

	res := Step(st, textEv(1, i18n.Resolve(i18n.LangRU, i18n.KeyAdvertising)))
	res = Step(res.State, textEv(1, "баннер на главной"))
	if res.State.Current != StateAwaitingAdContact {
		t.Fatalf("state = %q", res.State.Current)
	}
	res = Step(res.State, textEv(1, "+998 90 123"))

	effect, ok := res.Effect.(EffectCreateRequest)
	if !ok {
		t.Fatalf("effect = %T", res.Effect)
	}
	payload := effect.Payload.(store.AdvertisingPayload)
	if payload.AdRequest != "баннер на главной" || payload.ContactInfo != "+998 90 123" {
		t.Errorf("payload = %+v", payload)
	}
	if res.State.Current != StateMainMenu {
		t.Errorf("state = %q", res.State.Current)
	}
}

func TestStep_FreeMessageBranch(t *testing.T) {
	st := menuState(1, i18n.LangEN)

	res := Step(st, textEv(1, i18n.Resolve(i18n.LangEN, i18n.KeySendMessage)))
	res = Step(res.State, textEv(1, "hello there"))

	effect, ok := res.Effect.(EffectCreateRequest)
	if !ok {
		t.Fatalf("effect = %T", res.Effect)
	}
	payload := effect.Payload.(store.MessagePayload)
	if payload.Message != "hello there" {
		t.Errorf("payload = %+v", payload)
	}
	if res.State.Current != StateMainMenu {
		t.Errorf("state = %q", res.State.Current)
	}
}

func TestStep_CancelAtEveryStepCreatesNothing(t *testing.T) {
	subStates := []State{
		StateAwaitingCorrectionTarget, StateAwaitingCorrectionDetails,
		StateAwaitingAdRequest, StateAwaitingAdContact, StateAwaitingFreeMessage,
	}
	for _, s := range subStates {
		st := menuState(1, i18n.LangEN)
		st.Current = s
		st.Scratch["ad_request"] = "partial"

		res := Step(st, textEv(1, i18n.Resolve(i18n.LangEN, i18n.KeyCancel)))
		if res.State.Current != StateMainMenu {
			t.Errorf("%s: state = %q, want MAIN_MENU", s, res.State.Current)
		}
		if res.Effect != nil {
			t.Errorf("%s: cancel produced effect %T", s, res.Effect)
		}
		if len(res.State.Scratch) != 0 {
			t.Errorf("%s: scratch survived cancel: %v", s, res.State.Scratch)
		}
	}
}

func TestStep_SubDialogueIgnoresContactInput(t *testing.T) {
	st := menuState(1, i18n.LangEN)
	st.Current = StateAwaitingFreeMessage

	res := Step(st, contactEv(1, "+1555", 1, ""))
	if res.State.Current != StateAwaitingFreeMessage {
		t.Errorf("state = %q, want self-loop", res.State.Current)
	}
	if res.Effect != nil {
		t.Errorf("unexpected effect %T", res.Effect)
	}
}

// ---------------------------------------------------------------------------
// Command and restart tests
// ---------------------------------------------------------------------------

func TestStep_CommandRestartsFromAnyState(t *testing.T) {
	for state := range transitions {
		st := NewDialogueState(1)
		st.Current = state
		st.Language = i18n.LangEN
		st.Scratch["full_name"] = "half-done"

		res := Step(st, commandEv(1, "start"))
		if res.State.Current != StateAwaitingLanguage {
			t.Errorf("%s: state = %q, want AWAITING_LANGUAGE", state, res.State.Current)
		}
		if res.Effect != nil {
			t.Errorf("%s: restart produced effect %T", state, res.Effect)
		}
		if len(res.State.Scratch) != 0 {
			t.Errorf("%s: scratch survived restart", state)
		}
		if len(res.Prompts) != 1 || !strings.Contains(res.Prompts[0].Text, "Choose language") {
			t.Errorf("%s: prompts = %+v, want trilingual welcome", state, res.Prompts)
		}
	}
}

func TestStep_UnknownStateRestarts(t *testing.T) {
	st := NewDialogueState(1)
	st.Current = State("GONE_STATE")

	res := Step(st, textEv(1, "hi"))
	if res.State.Current != StateAwaitingLanguage {
		t.Errorf("state = %q, want AWAITING_LANGUAGE", res.State.Current)
	}
}

func TestStep_DoesNotMutateCallerScratch(t *testing.T) {
	st := menuState(1, i18n.LangEN)
	st.Current = StateAwaitingAdRequest
	st.Scratch["keep"] = "me"

	Step(st, textEv(1, "banner"))
	if st.Scratch["keep"] != "me" || len(st.Scratch) != 1 {
		t.Errorf("caller scratch mutated: %v", st.Scratch)
	}
}

// ---------------------------------------------------------------------------
// AckPrompt tests
// ---------------------------------------------------------------------------

func TestAckPrompt(t *testing.T) {
	p := AckPrompt(42, i18n.LangEN, 7)
	if p.Identity != 42 {
		t.Errorf("Identity = %d", p.Identity)
	}
	if !strings.Contains(p.Text, "#7") {
		t.Errorf("Text = %q, want request id", p.Text)
	}
	if !strings.Contains(p.Text, i18n.Resolve(i18n.LangEN, i18n.KeyThankYou)) {
		t.Errorf("Text = %q, want thank-you line", p.Text)
	}
}
