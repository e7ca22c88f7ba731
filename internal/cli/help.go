package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/law-makers/soldscrape/internal/ui"
)

// flagGroup names a block of global flags in help output
type flagGroup struct {
	title string
	names []string
}

// globalFlagGroups orders the persistent flags by what they tune. Flags not
// listed here end up under "Other".
var globalFlagGroups = []flagGroup{
	{"Proxy & transport", []string{"proxy", "timeout", "header", "search-url"}},
	{"Pacing", []string{"jitter-min", "jitter-max", "rate-limit"}},
	{"Listing extraction", []string{"locators", "min-name-length", "max-name-length", "max-pages"}},
	{"Logging & config", []string{"config", "verbose", "quiet", "json", "log-file"}},
}

func renderHelp(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold(ui.ColorCyan+strings.ToUpper(cmd.Name())))
	if cmd.Long != "" {
		fmt.Fprintf(w, "%s\n", cmd.Long)
	} else if cmd.Short != "" {
		fmt.Fprintf(w, "%s\n", cmd.Short)
	}

	renderUsageLines(w, cmd)

	if cmd.HasExample() {
		heading(w, "Examples")
		for _, line := range strings.Split(cmd.Example, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				fmt.Fprintln(w)
			case strings.HasPrefix(line, "#"):
				fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, line, ui.ColorReset)
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+line))
			}
		}
	}

	if cmds := visibleCommands(cmd); len(cmds) > 0 {
		heading(w, "Commands")
		rows := make([][2]string, 0, len(cmds))
		for _, c := range cmds {
			rows = append(rows, [2]string{c.Name(), c.Short})
		}
		printRows(w, rows, ui.ColorCyan)
	}

	if rows := flagRows(cmd.LocalNonPersistentFlags(), nil); len(rows) > 0 {
		heading(w, "Flags")
		printRows(w, rows, ui.ColorGreen)
	}

	if global := globalFlags(cmd); global.HasAvailableFlags() {
		seen := map[string]bool{}
		for _, g := range globalFlagGroups {
			if rows := flagRows(global, g.names); len(rows) > 0 {
				heading(w, g.title)
				printRows(w, rows, ui.ColorGreen)
			}
			for _, n := range g.names {
				seen[n] = true
			}
		}
		var rest []string
		global.VisitAll(func(f *pflag.Flag) {
			if !seen[f.Name] {
				rest = append(rest, f.Name)
			}
		})
		if rows := flagRows(global, rest); len(rest) > 0 && len(rows) > 0 {
			heading(w, "Other")
			printRows(w, rows, ui.ColorGreen)
		}
		fmt.Fprintf(w, "\n%sGlobal flags can also be set from --config YAML; SOLDSCRAPE_PROXY supplies proxies from the environment.%s\n",
			ui.ColorDim, ui.ColorReset)
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%sRun \"%s <command> --help\" for details on a command.%s\n",
			ui.ColorDim, cmd.CommandPath(), ui.ColorReset)
	}
	fmt.Fprintln(w)
}

// renderUsage is the short form shown after a usage error
func renderUsage(w io.Writer, cmd *cobra.Command) {
	renderUsageLines(w, cmd)
	if rows := flagRows(cmd.LocalNonPersistentFlags(), nil); len(rows) > 0 {
		heading(w, "Flags")
		printRows(w, rows, ui.ColorGreen)
	}
	fmt.Fprintf(w, "\n%sRun \"%s --help\" for more.%s\n", ui.ColorDim, cmd.CommandPath(), ui.ColorReset)
}

func renderUsageLines(w io.Writer, cmd *cobra.Command) {
	heading(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s [flags]\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset, ui.ColorYellow, ui.ColorReset)
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold(ui.ColorWhite+title))
}

// globalFlags collects the persistent flags visible to cmd, whether it
// declares them or inherits them.
func globalFlags(cmd *cobra.Command) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.AddFlagSet(cmd.InheritedFlags())
	fs.AddFlagSet(cmd.PersistentFlags())
	return fs
}

func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			out = append(out, c)
		}
	}
	return out
}

// flagRows renders the named flags of fs in the given order, or every
// visible flag when names is nil. Unknown and hidden flags are skipped.
func flagRows(fs *pflag.FlagSet, names []string) [][2]string {
	var flags []*pflag.Flag
	if names == nil {
		fs.VisitAll(func(f *pflag.Flag) { flags = append(flags, f) })
	} else {
		for _, n := range names {
			if f := fs.Lookup(n); f != nil {
				flags = append(flags, f)
			}
		}
	}

	rows := make([][2]string, 0, len(flags))
	for _, f := range flags {
		if f.Hidden {
			continue
		}
		varname, usage := pflag.UnquoteUsage(f)
		left := "    --" + f.Name
		if f.Shorthand != "" {
			left = "-" + f.Shorthand + ", --" + f.Name
		}
		if varname != "" {
			left += " " + varname
		}
		switch f.DefValue {
		case "", "false", "[]", "0":
		default:
			usage += " (default " + f.DefValue + ")"
		}
		rows = append(rows, [2]string{left, usage})
	}
	return rows
}

func printRows(w io.Writer, rows [][2]string, color string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len(r[0])+2)
		fmt.Fprintf(w, "  %s%s%s%s%s%s%s\n", color, r[0], ui.ColorReset, pad, ui.ColorDim, r[1], ui.ColorReset)
	}
}
