package hdreason

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCoreLoadsDirectoryOfFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.hd"), []byte("isA socrates Human"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra.hd"), []byte("isA plato Human"), 0o644); err != nil {
		t.Fatal(err)
	}

	sess := newTestSession(t)
	res := sess.LoadCore(LoadCoreOptions{CorePath: dir})
	if !res.Success {
		t.Fatalf("expected LoadCore to succeed, got errors: %v", res.Errors)
	}
	if len(sess.kb.order) != 2 {
		t.Fatalf("expected 2 facts loaded, got %d", len(sess.kb.order))
	}
}

func TestLoadCoreMissingPathIsError(t *testing.T) {
	sess := newTestSession(t)
	res := sess.LoadCore(LoadCoreOptions{CorePath: filepath.Join(t.TempDir(), "does-not-exist")})
	if res.Success {
		t.Fatal("expected a missing core path to fail")
	}
}

func TestLoadCoreIncludesIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.hd"), []byte("isA socrates Human"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "_index.hd"), []byte("isA plato Human"), 0o644); err != nil {
		t.Fatal(err)
	}

	sess := newTestSession(t)
	res := sess.LoadCore(LoadCoreOptions{CorePath: dir, IncludeIndex: true})
	if !res.Success {
		t.Fatalf("expected LoadCore with index to succeed, got errors: %v", res.Errors)
	}
	if len(sess.kb.order) != 2 {
		t.Fatalf("expected 2 facts (base + index), got %d", len(sess.kb.order))
	}
}

func TestCheckCoreVersionAcceptsMissingHeader(t *testing.T) {
	cfg := testSessionConfig()
	cfg.CoreVersionConstraint = ">= 1.0.0"
	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.checkCoreVersion([]byte("isA socrates Human")); err != nil {
		t.Fatalf("expected a file with no version header to be accepted, got %v", err)
	}
}

func TestCheckCoreVersionRejectsIncompatibleVersion(t *testing.T) {
	cfg := testSessionConfig()
	cfg.CoreVersionConstraint = ">= 2.0.0"
	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("// hdreason-core: v1.0.0\nisA socrates Human")
	if err := sess.checkCoreVersion(data); err == nil {
		t.Fatal("expected a v1.0.0 pack to be rejected under a >= 2.0.0 constraint")
	}
}

func TestCheckCoreVersionAcceptsCompatibleVersion(t *testing.T) {
	cfg := testSessionConfig()
	cfg.CoreVersionConstraint = ">= 1.0.0"
	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("// hdreason-core: v1.2.0\nisA socrates Human")
	if err := sess.checkCoreVersion(data); err != nil {
		t.Fatalf("expected a v1.2.0 pack to satisfy >= 1.0.0, got %v", err)
	}
}
