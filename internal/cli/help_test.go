package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestRenderHelp_SearchGroupsGlobalFlags(t *testing.T) {
	var buf bytes.Buffer
	renderHelp(&buf, searchCmd)
	out := buf.String()

	for _, want := range []string{
		`$ soldscrape search "game boy"`,
		"# Rotate through proxies",
		"-p, --pages",
		"--start-page int",
		"(default 1)",
		"--proxy strings",
		"--jitter-min duration",
		"--min-name-length int",
		"-H, --header stringArray",
		"SOLDSCRAPE_PROXY",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("search help missing %q", want)
		}
	}

	// groups appear in declared order
	last := -1
	for _, g := range globalFlagGroups {
		i := strings.Index(out, g.title)
		if i < 0 {
			t.Fatalf("search help missing group %q", g.title)
		}
		if i < last {
			t.Errorf("group %q out of order", g.title)
		}
		last = i
	}
	if strings.Contains(out, "Other") {
		t.Error("every global flag should belong to a named group")
	}
}

func TestRenderHelp_RootListsCommands(t *testing.T) {
	var buf bytes.Buffer
	renderHelp(&buf, rootCmd)
	out := buf.String()

	for _, want := range []string{"SOLDSCRAPE", "search", "serve", "Pacing", "--rate-limit", `"soldscrape <command> --help"`} {
		if !strings.Contains(out, want) {
			t.Errorf("root help missing %q", want)
		}
	}
}

func TestRenderUsage_OmitsGlobalGroups(t *testing.T) {
	var buf bytes.Buffer
	renderUsage(&buf, searchCmd)
	out := buf.String()

	if !strings.Contains(out, "soldscrape search <term>") {
		t.Errorf("usage line missing: %s", out)
	}
	if strings.Contains(out, "Pacing") || strings.Contains(out, "--proxy") {
		t.Errorf("usage should only show the command's own flags: %s", out)
	}
}

func TestFlagRows(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.IntP("pages", "p", 0, "Pages to fetch")
	fs.String("addr", ":8080", "Listen `address`")
	fs.Bool("secret", false, "hidden")
	_ = fs.MarkHidden("secret")

	rows := flagRows(fs, []string{"addr", "missing", "pages", "secret"})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "    --addr address" || rows[0][1] != "Listen address (default :8080)" {
		t.Errorf("unexpected addr row %q", rows[0])
	}
	if rows[1][0] != "-p, --pages int" || rows[1][1] != "Pages to fetch" {
		t.Errorf("unexpected pages row %q", rows[1])
	}

	if all := flagRows(fs, nil); len(all) != 2 {
		t.Errorf("nil names should list every visible flag, got %d", len(all))
	}
}
