package history

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestRecord_Eviction(t *testing.T) {
	h := New()
	for i := 1; i <= Capacity+1; i++ {
		h.Record(fmt.Sprintf("echo %d", i))
	}

	got := h.GetAll()
	if len(got) != Capacity {
		t.Fatalf("len = %d, want %d", len(got), Capacity)
	}
	for i, line := range got {
		if want := fmt.Sprintf("echo %d", i+2); line != want {
			t.Errorf("entry %d = %q, want %q", i+1, line, want)
		}
	}
}

func TestRecord_NeverExceedsCapacity(t *testing.T) {
	h := New()
	for i := 0; i < 3*Capacity+7; i++ {
		h.Record(fmt.Sprintf("cmd%d", i))
		if len(h.GetAll()) > Capacity {
			t.Fatalf("size %d exceeds capacity after %d inserts", len(h.GetAll()), i+1)
		}
	}
	last, err := h.Get(Capacity)
	if err != nil {
		t.Fatal(err)
	}
	if last != fmt.Sprintf("cmd%d", 3*Capacity+6) {
		t.Errorf("newest entry = %q", last)
	}
}

func TestRecord_SkipsHistoryCommands(t *testing.T) {
	h := New()
	for _, line := range []string{"", "history", "!!", "!5", "!abc"} {
		h.Record(line)
	}
	if len(h.GetAll()) != 0 {
		t.Errorf("len(GetAll()) = %d, want 0; entries %q", len(h.GetAll()), h.GetAll())
	}

	h.Record("ls")
	h.Record("history")
	if !reflect.DeepEqual(h.GetAll(), []string{"ls"}) {
		t.Errorf("GetAll() = %q", h.GetAll())
	}
}

func TestExpand_History(t *testing.T) {
	h := New()
	h.Record("ls")
	h.Record("pwd")

	var buf bytes.Buffer
	line, handled, err := h.Expand("history", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !handled {
		t.Error("history should be handled locally")
	}
	if line != "history" {
		t.Errorf("line = %q", line)
	}
	if want := "1: ls\n2: pwd\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestExpand_BangBang(t *testing.T) {
	h := New()
	var buf bytes.Buffer

	line, handled, err := h.Expand("!!", &buf)
	if !errors.Is(err, ErrNoHistory) {
		t.Fatalf("err = %v, want ErrNoHistory", err)
	}
	if line != "!!" || handled {
		t.Errorf("line = %q handled = %v, want unexpanded and unhandled", line, handled)
	}

	h.Record("echo one")
	h.Record("echo two")
	line, handled, err = h.Expand("!!", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if line != "echo two" || handled {
		t.Errorf("line = %q handled = %v", line, handled)
	}
}

func TestExpand_Index(t *testing.T) {
	h := New()
	h.Record("echo one")
	h.Record("echo two")

	testCases := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"!1", "echo one", nil},
		{"!2", "echo two", nil},
		{"!3", "!3", ErrInvalidIndex},
		{"!0", "!0", ErrInvalidIndex},
		{"!99999999999999999999", "!99999999999999999999", ErrInvalidIndex},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var buf bytes.Buffer
			line, handled, err := h.Expand(tc.input, &buf)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if handled {
				t.Error("recall should never be handled locally")
			}
			if line != tc.want {
				t.Errorf("line = %q, want %q", line, tc.want)
			}
		})
	}
}

func TestExpand_SignalWarning(t *testing.T) {
	h := New()
	h.Record("term 1234")
	h.Record("echo safe")

	var buf bytes.Buffer
	line, _, err := h.Expand("!1", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if line != "term 1234" {
		t.Errorf("line = %q", line)
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Errorf("expected a warning, got %q", buf.String())
	}

	buf.Reset()
	if _, _, err := h.Expand("!2", &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestExpand_PassThrough(t *testing.T) {
	h := New()
	h.Record("ls")

	for _, input := range []string{"echo hi", "!abc", "!", "ls !1"} {
		line, handled, err := h.Expand(input, &bytes.Buffer{})
		if err != nil || handled || line != input {
			t.Errorf("Expand(%q) = %q, %v, %v; want pass-through", input, line, handled, err)
		}
	}
}
