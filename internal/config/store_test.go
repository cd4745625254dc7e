package config

import (
	"testing"
	"time"
)

func TestStore_Defaults(t *testing.T) {
	s := NewStore()

	if s.Bool(SettingBlameIgnoreWhitespace) {
		t.Error("expected blame.ignoreWhitespace to default to false")
	}
	if !s.Bool(SettingCachingEnabled) {
		t.Error("expected advanced.caching.enabled to default to true")
	}
	if got := s.Int(SettingBlameDelayAfterEdit); got != 5000 {
		t.Errorf("Int(%s) = %d, want 5000", SettingBlameDelayAfterEdit, got)
	}
	if got := s.Duration(SettingBlameDelayAfterEdit); got != 5*time.Second {
		t.Errorf("Duration(%s) = %v, want 5s", SettingBlameDelayAfterEdit, got)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore()
	if got := s.Get("no.such.setting"); got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
	if s.Bool("no.such.setting") {
		t.Error("Bool() of unknown setting should be false")
	}
	if got := s.Int("no.such.setting"); got != 0 {
		t.Errorf("Int() of unknown setting = %d, want 0", got)
	}
}

func TestStore_IntWidths(t *testing.T) {
	s := NewStore()

	// TOML integers decode as int64.
	s.Set("a", int64(42))
	if got := s.Int("a"); got != 42 {
		t.Errorf("Int() = %d, want 42", got)
	}
	s.Set("b", 7)
	if got := s.Int("b"); got != 7 {
		t.Errorf("Int() = %d, want 7", got)
	}
}

func TestStore_SetNotifies(t *testing.T) {
	s := NewStore()

	var changes []Change
	s.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	s.Set(SettingBlameIgnoreWhitespace, true)

	if len(changes) != 1 {
		t.Fatalf("got %d notifications, want 1", len(changes))
	}
	c := changes[0]
	if c.Path != SettingBlameIgnoreWhitespace {
		t.Errorf("Path = %q, want %q", c.Path, SettingBlameIgnoreWhitespace)
	}
	if c.OldValue != false || c.NewValue != true {
		t.Errorf("change = %v -> %v, want false -> true", c.OldValue, c.NewValue)
	}
	if c.Initial {
		t.Error("Set() notification should not be marked initial")
	}
}

func TestStore_SetUnchangedSkipsNotify(t *testing.T) {
	s := NewStore()

	var count int
	s.Subscribe(func(Change) { count++ })

	s.Set(SettingCachingEnabled, true)
	if count != 0 {
		t.Errorf("got %d notifications for an unchanged value, want 0", count)
	}
}

func TestStore_SubscribePath(t *testing.T) {
	s := NewStore()

	var count int
	s.SubscribePath(SettingBlameDelayAfterEdit, func(Change) { count++ })

	s.Set(SettingBlameIgnoreWhitespace, true)
	s.Set(SettingBlameDelayAfterEdit, 1000)

	if count != 1 {
		t.Errorf("path observer ran %d times, want 1", count)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()

	var count int
	sub := s.Subscribe(func(Change) { count++ })
	sub.Unsubscribe()

	s.Set(SettingBlameIgnoreWhitespace, true)
	if count != 0 {
		t.Errorf("unsubscribed observer ran %d times, want 0", count)
	}
}

func TestStore_InitialLoadNotifiesEverySetting(t *testing.T) {
	s := NewStore()

	seen := make(map[string]Change)
	s.Subscribe(func(c Change) {
		seen[c.Path] = c
	})

	s.Load(map[string]any{SettingBlameDelayAfterEdit: int64(1000)}, true)

	// Every known setting announces its starting value, file-backed or
	// default.
	for _, path := range []string{SettingBlameIgnoreWhitespace, SettingCachingEnabled, SettingBlameDelayAfterEdit} {
		c, ok := seen[path]
		if !ok {
			t.Errorf("no initial notification for %s", path)
			continue
		}
		if !c.Initial {
			t.Errorf("notification for %s not marked initial", path)
		}
		if c.OldValue != nil {
			t.Errorf("initial notification for %s has OldValue %v, want nil", path, c.OldValue)
		}
	}
	if got := seen[SettingBlameDelayAfterEdit].NewValue; got != int64(1000) {
		t.Errorf("delayAfterEdit initial value = %v, want 1000", got)
	}
}

func TestStore_ReloadNotifiesOnlyChanges(t *testing.T) {
	s := NewStore()
	s.Load(map[string]any{SettingBlameDelayAfterEdit: int64(1000)}, true)

	var changes []Change
	s.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	s.Load(map[string]any{
		SettingBlameDelayAfterEdit:   int64(1000),
		SettingBlameIgnoreWhitespace: true,
	}, false)

	if len(changes) != 1 {
		t.Fatalf("got %d notifications, want 1", len(changes))
	}
	if changes[0].Path != SettingBlameIgnoreWhitespace {
		t.Errorf("Path = %q, want %q", changes[0].Path, SettingBlameIgnoreWhitespace)
	}
	if changes[0].Initial {
		t.Error("reload notification should not be marked initial")
	}
	if changes[0].OldValue != false {
		t.Errorf("OldValue = %v, want false", changes[0].OldValue)
	}
}
