package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateNoMeshes(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  \n  "},
		{"arithmetic", "(+ 1 2)"},
		{"definitions", "(def x 10)\n(def y 20)\n(+ x y)"},
		{"unused vector", "(vec3 1 2 3)"},
		{"solid without tessellation", "(box 1 2 3)"},
	}

	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Repeated evaluation of the same source gives the same result.
			for i := 0; i < 3; i++ {
				g, evalErrs, err := eng.Evaluate(tt.source)
				if err != nil {
					t.Fatalf("run %d: unexpected fatal error: %v", i, err)
				}
				if len(evalErrs) > 0 {
					t.Fatalf("run %d: unexpected eval errors: %v", i, evalErrs)
				}
				if g == nil {
					t.Fatalf("run %d: expected non-nil group", i)
				}
				if !g.IsEmpty() {
					t.Errorf("run %d: expected empty group, got %d meshes", i, g.NumMeshes())
				}
				if g.Name() != "scene" {
					t.Errorf("run %d: group name = %q, want scene", i, g.Name())
				}
			}
		})
	}
}

func TestEvaluateFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unmatched paren", "(+ 1 2"},
		{"undefined symbol", "(+ 1 undefined-symbol)"},
		{"unknown builtin", "(sphere 3)"},
	}

	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Fatal("expected nil group on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			if evalErrs[0].Message == "" {
				t.Error("eval error message should not be empty")
			}
		})
	}
}

func TestWithGroupName(t *testing.T) {
	eng := NewEngine(WithGroupName("parts"))
	g, evalErrs, err := eng.Evaluate(`(defmesh "t" :vertices [(vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)] :faces [[0 1 2]])`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}
	if g.Name() != "parts" || g.NumMeshes() != 1 {
		t.Errorf("got group %q with %d meshes", g.Name(), g.NumMeshes())
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	// Put the error on line 2.
	source := "(+ 1 2)\n(+ 3"
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil group on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// We expect the line number to be extracted from the zygomys error.
	// Line info may or may not be available depending on the error format;
	// we just check the error is populated.
	e := evalErrs[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	// If line info was extracted, verify it's positive.
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	// No line info.
	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	s2 := e2.Error()
	if strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Drive waitWithTimeout with a channel that never sends. This takes
	// EvalTimeout of wall time.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestWaitPassesResultThrough(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(3)

	ch := make(chan evalResult, 1)
	ch <- evalResult{errors: []EvalError{{Line: 2, Message: "boom"}}, warnings: []EvalWarning{{Mesh: "m", Message: "w"}}}
	res, err := waitWithTimeout(ch, 3, &mu, &gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Line != 2 {
		t.Errorf("errors = %v", res.Errors)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Mesh != "m" {
		t.Errorf("warnings = %v", res.Warnings)
	}

	ch <- evalResult{err: errString("fatal")}
	if _, err := waitWithTimeout(ch, 3, &mu, &gen); err == nil || err.Error() != "fatal" {
		t.Errorf("expected fatal error to pass through, got %v", err)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	// Test that a stale generation is detected.
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "text around line info kept",
			msg:      "defmesh a: face 0 out of range\nerror on line 3: in call\nstack",
			wantLine: 3,
			wantMsg:  "face 0 out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
