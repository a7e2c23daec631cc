package envutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("LORE_TEST_INT", "abc")
	if got := Int("LORE_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int: want 7 got %d", got)
	}
	t.Setenv("LORE_TEST_INT", " 42 ")
	if got := Int("LORE_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("Int: want 42 got %d", got)
	}
}

func TestBoolAndDuration(t *testing.T) {
	t.Setenv("LORE_TEST_BOOL", "yes")
	if !Bool("LORE_TEST_BOOL", false, nil) {
		t.Fatalf("Bool: expected true")
	}
	t.Setenv("LORE_TEST_DUR", "90")
	if got := Duration("LORE_TEST_DUR", time.Second, nil); got != 90*time.Second {
		t.Fatalf("Duration seconds: got %s", got)
	}
	t.Setenv("LORE_TEST_DUR", "2m")
	if got := Duration("LORE_TEST_DUR", time.Second, nil); got != 2*time.Minute {
		t.Fatalf("Duration string: got %s", got)
	}
}

func TestListSplitsAndTrims(t *testing.T) {
	t.Setenv("LORE_TEST_LIST", "a, b,,c ")
	got := List("LORE_TEST_LIST", nil, nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("List: got %v", got)
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("LORE_TEST_DOTENV_NEW=from-file\nLORE_TEST_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LORE_TEST_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("LORE_TEST_DOTENV_NEW") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("LORE_TEST_DOTENV_NEW"); got != "from-file" {
		t.Fatalf("new var: got %q", got)
	}
	if got := os.Getenv("LORE_TEST_DOTENV_SET"); got != "from-env" {
		t.Fatalf("existing var overwritten: got %q", got)
	}
}
