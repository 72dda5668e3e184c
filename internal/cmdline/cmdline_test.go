package cmdline

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_Single(t *testing.T) {
	testCases := []struct {
		line     string
		args     []string
		in, out  string
		blocking bool
	}{
		{"ls -l", []string{"ls", "-l"}, "", "", true},
		{"  echo hi  ", []string{"echo", "hi"}, "", "", true},
		{"echo hi > out.txt", []string{"echo", "hi"}, "", "out.txt", true},
		{"cat < in.txt", []string{"cat"}, "in.txt", "", true},
		{"sort <in.txt >out.txt", []string{"sort"}, "in.txt", "out.txt", true},
		{"sleep 5 &", []string{"sleep", "5"}, "", "", false},
		{"sleep 5&", []string{"sleep", "5"}, "", "", false},
		{`echo "a b" 'c'`, []string{"echo", "a b", "c"}, "", "", true},
		{`echo foo\&`, []string{"echo", "foo&"}, "", "", true},
		{`echo 'foo&'`, []string{"echo", "foo&"}, "", "", true},
		{`echo foo\\&`, []string{"echo", `foo\`}, "", "", false},
		{`echo 'a b'&`, []string{"echo", "a b"}, "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			cmd, err := Parse(tc.line)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tc.line, err)
			}
			if !reflect.DeepEqual(cmd.Args, tc.args) {
				t.Errorf("Args = %q, want %q", cmd.Args, tc.args)
			}
			if cmd.Name != tc.args[0] {
				t.Errorf("Name = %q, want %q", cmd.Name, tc.args[0])
			}
			if cmd.InputRedirect != tc.in || cmd.OutputRedirect != tc.out {
				t.Errorf("redirects = %q/%q, want %q/%q", cmd.InputRedirect, cmd.OutputRedirect, tc.in, tc.out)
			}
			if cmd.Blocking != tc.blocking {
				t.Errorf("Blocking = %v, want %v", cmd.Blocking, tc.blocking)
			}
			if cmd.Next != nil {
				t.Error("single command should have no continuation")
			}
		})
	}
}

func TestParse_Pipeline(t *testing.T) {
	cmd, err := Parse("ls -a | tail -n 2 > last.txt &")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cmd.Next == nil {
		t.Fatal("expected a second stage")
	}
	if !reflect.DeepEqual(cmd.Args, []string{"ls", "-a"}) {
		t.Errorf("stage 1 args = %q", cmd.Args)
	}
	if !reflect.DeepEqual(cmd.Next.Args, []string{"tail", "-n", "2"}) {
		t.Errorf("stage 2 args = %q", cmd.Next.Args)
	}
	if cmd.Next.OutputRedirect != "last.txt" {
		t.Errorf("stage 2 output = %q", cmd.Next.OutputRedirect)
	}
	if cmd.Blocking || cmd.Next.Blocking {
		t.Error("trailing & should make both stages non-blocking")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		line string
		want error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"&", ErrEmpty},
		{"a | b | c", ErrTooManyStages},
		{"| tail", ErrEmptyStage},
		{"ls |", ErrEmptyStage},
		{"> out.txt", ErrEmptyStage},
		{"echo hi >", ErrMissingRedirect},
		{"cat < a < b", ErrDuplicateRedirect},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			_, err := Parse(tc.line)
			if !errors.Is(err, tc.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tc.line, err, tc.want)
			}
		})
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	if _, err := Parse(`echo "oops`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestClone(t *testing.T) {
	orig, err := Parse("grep foo < in.txt | wc -l")
	if err != nil {
		t.Fatal(err)
	}

	clone := orig.Clone()
	if clone.Next != nil {
		t.Error("clone should drop the pipeline continuation")
	}
	if clone.InputRedirect != "in.txt" {
		t.Errorf("clone InputRedirect = %q", clone.InputRedirect)
	}

	clone.Args[1] = "bar"
	if orig.Args[1] != "foo" {
		t.Error("mutating the clone changed the original")
	}
}

func TestString(t *testing.T) {
	cmd, err := Parse("echo 'a b' > out.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cmd.String(), "echo 'a b' > out.txt"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
