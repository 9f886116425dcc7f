package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signadot/inf-format/go-inf/format"
	"github.com/signadot/inf-format/go-inf/internal/inftest"

	"github.com/google/go-cmp/cmp"
)

func minimal() []byte {
	b := inftest.NewObject("RootClass")
	b.Counts(1, 0)
	b.Prop("PropName", inftest.S("val"))
	return b.Bytes()
}

// malformed decompresses fine but fails to decode.
func malformed() []byte {
	b := inftest.NewObject("RootClass")
	b.Counts(1, 0)
	b.U32(b.Str("Bad")).U8(1).U8(9)
	return b.Bytes()
}

const (
	minimalText = "\r\n[RootClass]\r\n{\r\n\t_RefID = 1\r\n\tPropName = \"val\"\r\n}\r\n"
	textInput   = "[Video]\r\n{\r\n\tWidth = 1280\r\n}\r\n"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		toText  bool
		want    []byte
		result  Result
		wantErr bool
	}{
		{"compressed", inftest.Compress(3, minimal()), false, minimal(), Decompressed, false},
		{"compressed to text", inftest.Compress(1, minimal()), true, []byte(minimalText), Converted, false},
		{"decompressed to text", minimal(), true, []byte(minimalText), Converted, false},
		{"decompressed", minimal(), false, minimal(), Decompressed, false},
		{"text", []byte(textInput), true, []byte(textInput), Text, false},
		{"fallback", inftest.Compress(3, malformed()), true, malformed(), Binary, true},
		{"unknown", []byte{0xFE, 0xFE, 0xFE, 0xFE, 1, 2, 3, 4, 5, 6, 7, 8}, true, nil, Skipped, true},
		{"short", []byte("[x]"), true, nil, Skipped, true},
		{"bad stream", inftest.Envelope(3, 4, 4, []byte{0xFF, 0xFF, 0xFF, 0xFF}), false, nil, Failed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, r, err := Convert(tt.in, ToText(tt.toText))
			if r != tt.result {
				t.Errorf("result %s want %s", r, tt.result)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// An unwrapped payload is decoded as it is, even when it would not pass
// for a decompressed file on its own.
func TestConvertUnwrappedNotReclassified(t *testing.T) {
	doc := minimal()
	doc[4] = 1
	if c := format.Classify(doc); c.Kind == format.Decompressed {
		t.Fatalf("payload classified as %s", c)
	}
	for _, env := range [][]byte{inftest.Compress(3, doc), inftest.CompressRaw(0, doc)} {
		got, r, err := Convert(env, ToText(true))
		if err != nil {
			t.Fatal(err)
		}
		if r != Converted {
			t.Errorf("result %s want %s", r, Converted)
		}
		if diff := cmp.Diff(minimalText, string(got)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestConvertUnknownIsErrUnknownFormat(t *testing.T) {
	_, _, err := Convert([]byte{0xFE, 0xFE, 0xFE, 0xFE, 1, 2, 3, 4, 5, 6, 7, 8})
	if !errors.Is(err, format.ErrUnknownFormat) {
		t.Errorf("got %v", err)
	}
}

func writeFiles(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func testTree() map[string][]byte {
	return map[string][]byte{
		"a.inf":          inftest.Compress(3, minimal()),
		"sub/b.INF":      inftest.Compress(0, minimal()),
		"sub/deep/c.inf": []byte(textInput),
		"d.inf":          inftest.Compress(2, malformed()),
		"e.inf":          []byte{0xFE, 0xFE, 0xFE, 0xFE, 1, 2, 3, 4, 5, 6, 7, 8},
		"f.inf":          inftest.Envelope(3, 4, 4, []byte{0xFF, 0xFF, 0xFF, 0xFF}),
		"notes.txt":      []byte("not an inf file"),
	}
}

func TestDirToText(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	writeFiles(t, in, testTree())

	stats, err := Dir(context.Background(), in, out, ToText(true), Workers(3))
	if err != nil {
		t.Fatal(err)
	}
	want := map[Result]int64{Converted: 2, Text: 1, Binary: 1, Skipped: 1, Failed: 1}
	for r := Skipped; r < numResults; r++ {
		if got := stats.Count(r); got != want[r] {
			t.Errorf("%s: got %d want %d", r, got, want[r])
		}
	}
	if stats.Total() != 6 {
		t.Errorf("total %d", stats.Total())
	}
	checkFile(t, filepath.Join(out, "a.inf"), []byte(minimalText))
	checkFile(t, filepath.Join(out, "sub", "b.INF"), []byte(minimalText))
	checkFile(t, filepath.Join(out, "sub", "deep", "c.inf"), []byte(textInput))
	checkFile(t, filepath.Join(out, "d.inf"), malformed())
	for _, name := range []string{"e.inf", "f.inf", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("%s: expected no output, got %v", name, err)
		}
	}

	var buf bytes.Buffer
	if err := stats.Print(&buf, true); err != nil {
		t.Fatal(err)
	}
	wantSummary := strings.Join([]string{
		"Done!",
		"  Converted to text: 2",
		"  Already text: 1",
		"  Binary (fallback): 1",
		"  Errors: 1",
		"  Skipped: 1",
		"",
	}, "\n")
	if diff := cmp.Diff(wantSummary, buf.String()); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}
}

func TestDirInPlace(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{
		"a.inf": inftest.Compress(3, minimal()),
		"c.inf": []byte(textInput),
	})
	stats, err := Dir(context.Background(), dir, dir, Workers(1))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count(Decompressed) != 1 || stats.Count(Text) != 1 {
		t.Errorf("decompressed %d text %d", stats.Count(Decompressed), stats.Count(Text))
	}
	checkFile(t, filepath.Join(dir, "a.inf"), minimal())
	checkFile(t, filepath.Join(dir, "c.inf"), []byte(textInput))
}

func TestDirCancelled(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, testTree())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := Dir(ctx, in, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
	if stats.Total() != 0 {
		t.Errorf("processed %d files", stats.Total())
	}
}

func TestDirMissing(t *testing.T) {
	if _, err := Dir(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Error("expected error")
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, testTree())
	files, err := Find(dir)
	if err != nil {
		t.Fatal(err)
	}
	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	want := []string{"a.inf", "d.inf", "e.inf", "f.inf", "sub/b.INF", "sub/deep/c.inf"}
	if diff := cmp.Diff(want, rels); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultWorkers(t *testing.T) {
	t.Setenv(WorkersEnv, "7")
	if n := DefaultWorkers(); n != 7 {
		t.Errorf("got %d", n)
	}
	t.Setenv(WorkersEnv, "zero")
	if n := DefaultWorkers(); n < 1 {
		t.Errorf("got %d", n)
	}
}

func checkFile(t *testing.T, p string, want []byte) {
	t.Helper()
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s (-want +got):\n%s", p, diff)
	}
}
