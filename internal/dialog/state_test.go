package dialog

import (
	"sync"
	"testing"

	"github.com/spravuz/spravbot/internal/i18n"
)

func TestMemoryStateStore_LoadCreatesEntryState(t *testing.T) {
	m := NewMemoryStateStore()

	st := m.Load(42)
	if st.Identity != 42 {
		t.Errorf("Identity = %d, want 42", st.Identity)
	}
	if st.Current != StateAwaitingLanguage {
		t.Errorf("Current = %q, want %q", st.Current, StateAwaitingLanguage)
	}
	if st.Language != i18n.DefaultLanguage {
		t.Errorf("Language = %q, want %q", st.Language, i18n.DefaultLanguage)
	}
	if st.Scratch == nil {
		t.Error("Scratch is nil")
	}
}

func TestMemoryStateStore_SaveThenLoad(t *testing.T) {
	m := NewMemoryStateStore()

	st := NewDialogueState(42)
	st.Current = StateMainMenu
	st.Language = i18n.LangEN
	st.Scratch["full_name"] = "Jane"
	m.Save(st)

	got := m.Load(42)
	if got.Current != StateMainMenu || got.Language != i18n.LangEN {
		t.Errorf("Load = %+v", got)
	}
	if got.Scratch["full_name"] != "Jane" {
		t.Errorf("Scratch = %v", got.Scratch)
	}

	// Other identities are unaffected.
	other := m.Load(43)
	if other.Current != StateAwaitingLanguage {
		t.Errorf("other identity state = %q", other.Current)
	}
}

func TestMemoryStateStore_ConcurrentIdentities(t *testing.T) {
	m := NewMemoryStateStore()

	var wg sync.WaitGroup
	for id := int64(0); id < 50; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				unlock := m.Lock(id)
				st := m.Load(id)
				st.Current = StateMainMenu
				m.Save(st)
				unlock()
			}
		}(id)
	}
	wg.Wait()

	for id := int64(0); id < 50; id++ {
		if got := m.Load(id).Current; got != StateMainMenu {
			t.Fatalf("identity %d state = %q, want MAIN_MENU", id, got)
		}
	}
}

func TestMemoryStateStore_LockSerializesOneIdentity(t *testing.T) {
	m := NewMemoryStateStore()

	// Two goroutines doing read-modify-write under the identity lock must
	// not lose increments.
	const turns = 200
	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < turns; i++ {
				unlock := m.Lock(7)
				st := m.Load(7)
				if st.Scratch == nil {
					st.Scratch = map[string]string{}
				}
				st.Scratch["n"] = st.Scratch["n"] + "x"
				m.Save(st)
				unlock()
			}
		}()
	}
	wg.Wait()

	if got := len(m.Load(7).Scratch["n"]); got != 2*turns {
		t.Errorf("counter = %d, want %d", got, 2*turns)
	}
}
