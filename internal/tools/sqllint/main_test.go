package main

import (
	"strings"
	"testing"
)

func TestInlineQueriesCarryMarkers(t *testing.T) {
	l := newLinter()
	if err := l.walk("../../sqlinline"); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(l.seen) == 0 {
		t.Fatalf("expected to find inline queries")
	}
	for _, f := range l.findings {
		t.Errorf("%s", f)
	}
}

func TestCheckReportsProblems(t *testing.T) {
	src := "package q\n\n" +
		"const A = `--sql 953679f7-6900-431f-8686-115111faee35\nselect 1`\n" +
		"const B = `--sql 953679f7-6900-431f-8686-115111faee35\nselect 2`\n" +
		"const C = \"select 3\"\n" +
		"const D = \"not a query\"\n"

	l := newLinter()
	if err := l.check("q.go", []byte(src)); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(l.findings) != 2 {
		t.Fatalf("findings = %v", l.findings)
	}
	if l.findings[0].name != "B" || !strings.Contains(l.findings[0].message, "already used") {
		t.Fatalf("duplicate not reported: %v", l.findings[0])
	}
	if l.findings[1].name != "C" || !strings.Contains(l.findings[1].message, "missing") {
		t.Fatalf("missing marker not reported: %v", l.findings[1])
	}
}
