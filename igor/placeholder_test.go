package igor

import "testing"

func TestSpliceLinePlaceholder(t *testing.T) {
	content := "before\n==== PLACEHOLDER build_deps ====\nafter\n"
	out, found, err := Splice(content, "build_deps", "tokio = \"1\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected placeholder to be found")
	}
	want := "before\n==== PLACEHOLDER build_deps ====\ntokio = \"1\"\nafter\n"
	if out != want {
		t.Fatalf("got:\n%q\nwant:\n%q", out, want)
	}
}

// TestSpliceMultilineBodyUsesBeginEnd exercises scenario S3: a
// single-line placeholder spliced with a multi-line body grows a
// BEGIN/END block around it.
func TestSpliceMultilineBodyUsesBeginEnd(t *testing.T) {
	content := "[dependencies]\n==== PLACEHOLDER build_deps ====\n"
	out, found, err := Splice(content, "build_deps", "tokio = \"1\"\nserde = \"1\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected placeholder to be found")
	}
	want := "[dependencies]\n" +
		"==== BEGIN build_deps ====\ntokio = \"1\"\nserde = \"1\"\n==== END build_deps ====\n"
	if out != want {
		t.Fatalf("got:\n%q\nwant:\n%q", out, want)
	}
}

// TestSpliceIdempotent checks property P4: splicing twice yields the
// same content as splicing once.
func TestSpliceIdempotent(t *testing.T) {
	content := "a\n==== PLACEHOLDER x ====\nb\n"
	once, _, err := Splice(content, "x", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, _, err := Splice(once, "x", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice {
		t.Fatalf("splice not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestSpliceBlockReplacesExistingBody(t *testing.T) {
	content := "x\n==== BEGIN p ====\nold\n==== END p ====\ny\n"
	out, found, err := Splice(content, "p", "new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected placeholder to be found")
	}
	want := "x\n==== BEGIN p ====\nnew\n==== END p ====\ny\n"
	if out != want {
		t.Fatalf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestSpliceNoSiteReturnsUnchanged(t *testing.T) {
	content := "no markers here\n"
	out, found, err := Splice(content, "missing", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected no site found")
	}
	if out != content {
		t.Fatalf("expected unchanged content, got %q", out)
	}
}

func TestSpliceUnbalancedBeginIsFatal(t *testing.T) {
	content := "==== BEGIN p ====\nbody\n"
	_, _, err := Splice(content, "p", "new")
	if err == nil {
		t.Fatal("expected unbalanced placeholder error")
	}
	if kind, _ := KindOf(err); kind != KindUnbalancedPlaceholder {
		t.Fatalf("error kind = %v, want KindUnbalancedPlaceholder", kind)
	}
}

// TestSplicePreservesMixedLineEndings covers the boundary case of mixed
// \r\n and \n line endings surviving a splice unchanged.
func TestSplicePreservesMixedLineEndings(t *testing.T) {
	content := "crlf line\r\n==== BEGIN p ====\r\nold\r\n==== END p ====\nlf line\n"
	out, found, err := Splice(content, "p", "new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected placeholder to be found")
	}
	want := "crlf line\r\n==== BEGIN p ====\r\nnew\r\n==== END p ====\nlf line\n"
	if out != want {
		t.Fatalf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestHasPlaceholder(t *testing.T) {
	content := "==== PLACEHOLDER p ====\n"
	ok, err := HasPlaceholder(content, "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected placeholder present")
	}
	ok, err = HasPlaceholder(content, "other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected placeholder absent for a different id")
	}
}

func TestMarkerIgnoresSurroundingCommentSyntax(t *testing.T) {
	content := "// ==== PLACEHOLDER p ====\nold\n"
	out, found, err := Splice(content, "p", "new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected placeholder to be found despite comment prefix")
	}
	want := "// ==== PLACEHOLDER p ====\nnew\nold\n"
	if out != want {
		t.Fatalf("got:\n%q\nwant:\n%q", out, want)
	}
}
