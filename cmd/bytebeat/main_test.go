package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/soracane/bytebeat/internal/beat"
	"github.com/soracane/bytebeat/internal/library"
)

func TestResolveSource(t *testing.T) {
	songs := library.Builtin()

	source, err := resolveSource(Option{Expr: "t&t>>8"}, songs)
	if err != nil {
		t.Fatal(err)
	}
	if source != "t&t>>8" {
		t.Errorf("unexpected source: %q", source)
	}

	source, err = resolveSource(Option{Song: "the 42 melody"}, songs)
	if err != nil {
		t.Fatal(err)
	}
	if source != "t*(42&t>>10)" {
		t.Errorf("unexpected source: %q", source)
	}

	if _, err = resolveSource(Option{}, songs); err == nil {
		t.Error("expected an error without a source")
	}
	if _, err = resolveSource(Option{Expr: "t", Song: "crowd"}, songs); err == nil {
		t.Error("expected an error with two sources")
	}
	if _, err = resolveSource(Option{Expr: "t", Watch: true}, songs); err == nil {
		t.Error("expected an error for --watch without --file")
	}
	if _, err = resolveSource(Option{Song: "no such song"}, songs); err == nil {
		t.Error("expected an error for an unknown song")
	}
}

func TestUnderline(t *testing.T) {
	d := beat.Diagnostic{Pos: 4, End: 7, Message: "x", Severity: beat.SeverityError}
	if got := underline("t + @@@ + t", d, false); got != "    ^~~" {
		t.Errorf("unexpected underline: %q", got)
	}

	// Zero-width spans still get a caret.
	d = beat.Diagnostic{Pos: 2, End: 2}
	if got := underline("t +", d, false); got != "  ^" {
		t.Errorf("unexpected underline: %q", got)
	}
}

func TestReportDiagnosticsPlain(t *testing.T) {
	_, err := beat.Compile("t + + )")
	if err == nil {
		t.Fatal("expected a compile error")
	}
	diags := err.(beat.Diagnostics)

	var buf bytes.Buffer
	reportDiagnostics(&buf, "t + + )", diags, false)

	out := buf.String()
	if !strings.Contains(out, "t + + )") {
		t.Error("source line missing from report")
	}
	if !strings.Contains(out, "^") {
		t.Error("caret missing from report")
	}
	if !strings.Contains(out, "error at column") {
		t.Error("diagnostic line missing from report")
	}
}

func TestListSongs(t *testing.T) {
	var buf bytes.Buffer
	listSongs(&buf, library.Builtin())

	if !strings.Contains(buf.String(), "the 42 melody") {
		t.Error("built-in song missing from listing")
	}
}
