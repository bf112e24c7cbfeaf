package igor

import "testing"

func TestInterpolateBasic(t *testing.T) {
	got := Interpolate("Hello {{name}}!", map[string]string{"name": "world"})
	if got != "Hello world!" {
		t.Fatalf("got %q", got)
	}
}

func TestInterpolateMissingKeyLeftLiteral(t *testing.T) {
	got := Interpolate("{{missing}}", map[string]string{})
	if got != "{{missing}}" {
		t.Fatalf("got %q, want literal passthrough", got)
	}
}

func TestInterpolateNonIdentifierLeftLiteral(t *testing.T) {
	got := Interpolate("{{not a key}}", map[string]string{"not a key": "x"})
	if got != "{{not a key}}" {
		t.Fatalf("got %q, want literal passthrough for non-identifier key", got)
	}
}

func TestInterpolateNonRecursive(t *testing.T) {
	got := Interpolate("{{a}}", map[string]string{"a": "{{b}}", "b": "c"})
	if got != "{{b}}" {
		t.Fatalf("got %q, want single-pass substitution only", got)
	}
}

func TestInterpolateNoOpWithoutMarkers(t *testing.T) {
	got := Interpolate("plain text", nil)
	if got != "plain text" {
		t.Fatalf("got %q", got)
	}
}

func TestInterpolateUnterminated(t *testing.T) {
	got := Interpolate("a {{b", map[string]string{"b": "x"})
	if got != "a {{b" {
		t.Fatalf("got %q, want unterminated marker left as-is", got)
	}
}
