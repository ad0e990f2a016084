package main

import "testing"

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("default steps: got=%d err=%v", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("explicit steps: got=%d err=%v", got, err)
	}
	for _, raw := range []string{"0", "-1", "x"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if got, err := parseVersion("1"); err != nil || got != 1 {
		t.Fatalf("parseVersion: got=%d err=%v", got, err)
	}
	if _, err := parseVersion("-2"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if got, err := parseTarget("7"); err != nil || got != 7 {
		t.Fatalf("parseTarget: got=%d err=%v", got, err)
	}
	if _, err := parseTarget("-7"); err == nil {
		t.Fatalf("expected error for negative target")
	}
}

func TestRun_RequiresCommandAndDBURL(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("DB_URL", "")

	if err := run(nil, nil); err != errUsage {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run([]string{"up"}, nil); err == nil {
		t.Fatalf("expected error without DB_URL")
	}
}
