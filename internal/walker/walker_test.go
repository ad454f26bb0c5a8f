package walker

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"msigen/internal/config"
)

var testUpgradeCode = uuid.MustParse("5f9c2a6e-0c1d-4e2f-8a3b-4c5d6e7f8a9b")

func testConfig(shortcut string) *config.Config {
	return &config.Config{
		Name:        "My Application",
		UpgradeCode: testUpgradeCode,
		Shortcut:    shortcut,
	}
}

// makeTree builds bin/app.exe, bin/helper.dll, data/readme.txt.
func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"bin/app.exe", "bin/helper.dll", "data/readme.txt"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestWalkCountsComponents(t *testing.T) {
	root := makeTree(t)

	tree, err := New(testConfig("")).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(tree.Refs) != 3 {
		t.Errorf("got %d component refs, want 3", len(tree.Refs))
	}
	if len(tree.Dirs) != 2 {
		t.Errorf("got %d top-level dirs, want 2 (bin, data)", len(tree.Dirs))
	}
	if len(tree.Components) != 0 {
		t.Errorf("got %d top-level components, want 0", len(tree.Components))
	}

	// Sorted sibling order: bin before data.
	if tree.Dirs[0].Name != "bin" || tree.Dirs[1].Name != "data" {
		t.Errorf("dirs out of order: %s, %s", tree.Dirs[0].Name, tree.Dirs[1].Name)
	}
	if got := len(tree.Dirs[0].Components); got != 2 {
		t.Errorf("bin has %d components, want 2", got)
	}
}

func TestWalkIdentifiersAreStable(t *testing.T) {
	root := makeTree(t)
	w := New(testConfig(""))

	first, err := w.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	second, err := New(testConfig("")).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if !reflect.DeepEqual(first.Refs, second.Refs) {
		t.Errorf("refs differ across runs:\n%v\n%v", first.Refs, second.Refs)
	}
	if first.Dirs[0].ID != second.Dirs[0].ID {
		t.Errorf("directory ids differ: %s vs %s", first.Dirs[0].ID, second.Dirs[0].ID)
	}
}

func TestWalkIdentifierShape(t *testing.T) {
	root := makeTree(t)

	tree, err := New(testConfig("")).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	bin := tree.Dirs[0]
	if !strings.HasPrefix(bin.ID, "Dir_") {
		t.Errorf("directory id = %q, want Dir_ prefix", bin.ID)
	}
	comp := bin.Components[0]
	if !strings.HasPrefix(comp.ID, "Comp_") {
		t.Errorf("component id = %q, want Comp_ prefix", comp.ID)
	}
	if !strings.HasPrefix(comp.File.ID, "File_") {
		t.Errorf("file id = %q, want File_ prefix", comp.File.ID)
	}
	if !comp.File.KeyPath {
		t.Error("file should be the component key path")
	}
	if !filepath.IsAbs(comp.File.Source) {
		t.Errorf("file source %q should be absolute", comp.File.Source)
	}
}

func TestWalkShortcutCaseInsensitive(t *testing.T) {
	root := makeTree(t)

	tree, err := New(testConfig("BIN/App.Exe")).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if tree.Shortcut == nil {
		t.Fatal("shortcut target should have been found")
	}
	if tree.Shortcut.Name != "My Application" {
		t.Errorf("shortcut name = %q, want product name", tree.Shortcut.Name)
	}
	if tree.Shortcut.Directory != "ProgramMenuFolder" {
		t.Errorf("shortcut directory = %q", tree.Shortcut.Directory)
	}
	if !tree.Shortcut.Advertise {
		t.Error("shortcut should be advertised")
	}

	// The shortcut hangs off the matching file.
	var found bool
	for _, comp := range tree.Dirs[0].Components {
		if comp.File.Name == "app.exe" && comp.File.Shortcut == tree.Shortcut {
			found = true
		}
	}
	if !found {
		t.Error("shortcut not attached to bin/app.exe")
	}
}

func TestWalkShortcutBackslashes(t *testing.T) {
	root := makeTree(t)

	tree, err := New(testConfig(`bin\app.exe`)).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if tree.Shortcut == nil {
		t.Error("backslash-separated shortcut target should match")
	}
}

func TestWalkShortcutMissing(t *testing.T) {
	root := makeTree(t)

	tree, err := New(testConfig("bin/missing.exe")).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if tree.Shortcut != nil {
		t.Errorf("shortcut should not match: %+v", tree.Shortcut)
	}
}

func TestWalkEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "logs"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tree, err := New(testConfig("")).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(tree.Dirs) != 1 || tree.Dirs[0].Name != "logs" {
		t.Fatalf("empty directory should still be emitted: %+v", tree.Dirs)
	}
	if len(tree.Refs) != 0 {
		t.Errorf("got %d refs, want 0", len(tree.Refs))
	}
}

func TestWalkEmptyRoot(t *testing.T) {
	tree, err := New(testConfig("")).Walk(t.TempDir())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(tree.Dirs) != 0 || len(tree.Components) != 0 || len(tree.Refs) != 0 {
		t.Errorf("empty root should produce an empty tree: %+v", tree)
	}
}

func TestWalkArchBitnessChangesIdentifiers(t *testing.T) {
	root := makeTree(t)

	cfg32 := testConfig("")
	cfg64 := testConfig("")
	cfg64.X64 = true

	t32, err := New(cfg32).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	t64, err := New(cfg64).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	// Logical paths are rooted at the program-files folder id, so the
	// same tree gets distinct identities per bitness.
	if t32.Refs[0] == t64.Refs[0] {
		t.Errorf("x86 and x64 identifiers should differ: %s", t32.Refs[0])
	}
}
