package interp_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/nox-lang/nox/internal/interp"
	"github.com/nox-lang/nox/internal/lexer"
	"github.com/nox-lang/nox/internal/parser"
)

// TestFixtures runs every .nox program under testdata/fixtures through the
// full tokenize/parse/evaluate pipeline and snapshot-matches its printed
// output, the way the reference interpreter's own fixture suite snapshots
// whole-program output rather than asserting on individual expressions.
func TestFixtures(t *testing.T) {
	files, err := filepath.Glob("testdata/fixtures/*.nox")
	if err != nil {
		t.Fatalf("glob fixtures: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no fixtures found under testdata/fixtures")
	}

	for _, file := range files {
		file := file
		name := strings.TrimSuffix(filepath.Base(file), ".nox")
		t.Run(name, func(t *testing.T) {
			output := runFixture(t, file)
			snaps.MatchSnapshot(t, output)
		})
	}
}

func runFixture(t *testing.T, file string) string {
	t.Helper()
	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read %s: %v", file, err)
	}
	source := string(raw)

	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("tokenize %s: %v", file, err)
	}
	program, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("parse %s: %v", file, err)
	}

	var buf bytes.Buffer
	env := interp.NewEnvironment()
	if _, err := interp.EvalTo(program, env, &buf); err != nil {
		t.Fatalf("eval %s: %v", file, err)
	}
	return buf.String()
}
