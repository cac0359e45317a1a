package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingNotifier struct {
	name       string
	errorsOnly bool
	fail       bool
	got        []Notification
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Capabilities() Capabilities {
	return Capabilities{ErrorsOnly: r.errorsOnly}
}

func (r *recordingNotifier) Send(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	if r.fail {
		return errors.New(r.name + " down")
	}
	return nil
}

func TestRegistry(t *testing.T) {
	Register("test-registry", func(cfg map[string]string) (Notifier, error) {
		return &recordingNotifier{name: cfg["name"]}, nil
	})

	n, err := New("test-registry", map[string]string{"name": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if n.Name() != "x" {
		t.Errorf("expected name x, got %s", n.Name())
	}

	if _, err := New("missing", nil); err == nil {
		t.Error("expected error for unknown provider")
	}

	found := false
	for _, name := range Available() {
		if name == "test-registry" {
			found = true
		}
	}
	if !found {
		t.Error("registered factory missing from Available()")
	}
}

func TestNewAll(t *testing.T) {
	Register("test-newall", func(cfg map[string]string) (Notifier, error) {
		if cfg["fail"] != "" {
			return nil, errors.New("bad options")
		}
		return &recordingNotifier{name: cfg["name"]}, nil
	})

	list, err := NewAll(
		Config{Provider: "test-newall", Options: map[string]string{"name": "a"}},
		Config{Provider: "test-newall", Options: map[string]string{"name": "b"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name() != "a" || list[1].Name() != "b" {
		t.Errorf("unexpected notifiers %v", list)
	}

	_, err = NewAll(
		Config{Provider: "test-newall", Options: map[string]string{"fail": "1"}},
		Config{Provider: "nope"},
	)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"bad options", "unknown provider"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
