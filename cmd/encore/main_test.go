package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseTrackFlags(t *testing.T) {
	tracks, err := parseTrackFlags([]string{
		"Opening|The Commuters|/tmp/1.mp3",
		" Closing | The Commuters | /tmp/2.mp3 ",
	})
	if err != nil {
		t.Fatalf("parseTrackFlags failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("tracks: got %d", len(tracks))
	}
	if tracks[0].Title != "Opening" || tracks[0].AudioPath != "/tmp/1.mp3" {
		t.Errorf("first track: %+v", tracks[0])
	}
	if tracks[1].Artist != "The Commuters" {
		t.Errorf("whitespace should be trimmed: %+v", tracks[1])
	}
}

func TestParseTrackFlagsRejectsBadFormat(t *testing.T) {
	for _, bad := range []string{"TitleOnly", "Title|Artist"} {
		if _, err := parseTrackFlags([]string{bad}); err == nil {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(data), "[platform]") {
		t.Error("sample should contain the [platform] section")
	}
	if !strings.Contains(out.String(), target) {
		t.Error("output should name the written path")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("existing config should not be overwritten without --overwrite")
	}

	cmd = newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target, "--overwrite"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("overwrite should succeed: %v", err)
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken(""); got != "(unset)" {
		t.Errorf("empty token: got %q", got)
	}
	if got := maskToken("abc"); got != "****" {
		t.Errorf("short token: got %q", got)
	}
	if got := maskToken("secret-token-1234"); got != "****1234" {
		t.Errorf("long token: got %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Title"},
		[][]string{{"s1", "Night Drive"}, {"s2"}},
	)
	if !strings.Contains(out, "Night Drive") || !strings.Contains(out, "s2") {
		t.Errorf("table missing rows:\n%s", out)
	}
}

func TestAggregate(t *testing.T) {
	if _, ok := aggregate(nil); ok {
		t.Error("empty snapshot should not aggregate")
	}
	pct, ok := aggregate(map[string]int{"artwork": 100, "audio": 50})
	if !ok || pct != 75 {
		t.Errorf("aggregate: got %d ok=%v", pct, ok)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"submit", "podcast", "blog", "profile", "submissions", "whoami", "config"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing %q", name)
		}
	}
}
