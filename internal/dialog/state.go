// Package dialog implements the conversation state machine that collects
// requests turn by turn.
package dialog

import (
	"sync"

	"github.com/spravuz/spravbot/internal/i18n"
)

// State identifies where a conversation currently is. There is no terminal
// state; StateMainMenu is the stable resting state after onboarding and
// after every sub-dialogue completes or is cancelled.
type State string

const (
	StateAwaitingLanguage          State = "AWAITING_LANGUAGE"
	StateAwaitingContact           State = "AWAITING_CONTACT"
	StateAwaitingFullName          State = "AWAITING_FULL_NAME"
	StateAwaitingCompanyName       State = "AWAITING_COMPANY_NAME"
	StateMainMenu                  State = "MAIN_MENU"
	StateAwaitingCorrectionTarget  State = "AWAITING_CORRECTION_TARGET"
	StateAwaitingCorrectionDetails State = "AWAITING_CORRECTION_DETAILS"
	StateAwaitingAdRequest         State = "AWAITING_AD_REQUEST"
	StateAwaitingAdContact         State = "AWAITING_AD_CONTACT"
	StateAwaitingFreeMessage       State = "AWAITING_FREE_MESSAGE"
)

// Scratch keys accumulated across the turns of one sub-dialogue.
const (
	scratchPhone             = "phone"
	scratchContactID         = "contact_id"
	scratchHandle            = "handle"
	scratchFullName          = "full_name"
	scratchCorrectionCompany = "correction_company"
	scratchAdRequest         = "ad_request"
)

// DialogueState is the per-identity conversation state. It is ephemeral:
// losing it restarts the conversation cleanly from the entry state.
type DialogueState struct {
	Identity int64
	Current  State
	Language string
	Scratch  map[string]string
}

// NewDialogueState returns the entry state for a fresh identity.
func NewDialogueState(identity int64) DialogueState {
	return DialogueState{
		Identity: identity,
		Current:  StateAwaitingLanguage,
		Language: i18n.DefaultLanguage,
		Scratch:  map[string]string{},
	}
}

// StateStore holds one in-progress conversation state per identity.
// Implementations must be safe under concurrent access from different
// identities; Lock serializes turns within one identity.
type StateStore interface {
	// Load returns the state for an identity, creating the entry state
	// if absent.
	Load(identity int64) DialogueState

	// Save overwrites the state for the state's identity.
	Save(state DialogueState)

	// Lock acquires the per-identity turn lock and returns the unlock
	// function. Turns for one identity must run under this lock.
	Lock(identity int64) (unlock func())
}

// MemoryStateStore is the in-process StateStore. State does not survive a
// restart, which is acceptable: stale state is inert and rebuildable.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[int64]DialogueState
	locks  map[int64]*sync.Mutex
}

// NewMemoryStateStore creates an empty MemoryStateStore.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[int64]DialogueState),
		locks:  make(map[int64]*sync.Mutex),
	}
}

// Load returns the stored state or the entry state if absent.
func (m *MemoryStateStore) Load(identity int64) DialogueState {
	m.mu.RLock()
	st, ok := m.states[identity]
	m.mu.RUnlock()
	if !ok {
		return NewDialogueState(identity)
	}
	return st
}

// Save overwrites the state for its identity.
func (m *MemoryStateStore) Save(state DialogueState) {
	m.mu.Lock()
	m.states[state.Identity] = state
	m.mu.Unlock()
}

// Lock acquires the per-identity mutex, creating it on first use.
func (m *MemoryStateStore) Lock(identity int64) func() {
	m.mu.Lock()
	l, ok := m.locks[identity]
	if !ok {
		l = &sync.Mutex{}
		m.locks[identity] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
