package themes

import (
	"os"
	"regexp"
	"strings"
)

// Hyprland 0.53 renamed windowrulev2 to windowrule, switched rule fields
// from comma- to space-separated, and dropped the ^()$ regex anchors
// around class:/title: values. Older themes still ship the old syntax.
var (
	windowRulePattern = regexp.MustCompile(`^(windowrulev?2?)\s*=\s*(.+)$`)
	anchorPattern     = regexp.MustCompile(`((?:class|title):)\^\((.+?)\)\$`)
)

// PatchHyprlandConf rewrites deprecated window-rule syntax in a theme's
// hyprland.conf. The file is only written back when a line changed.
func PatchHyprlandConf(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(raw), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	out := make([]string, 0, len(lines))
	changed := false

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		m := windowRulePattern.FindStringSubmatch(stripped)
		if m == nil {
			out = append(out, line)
			continue
		}

		keyword, rest := m[1], m[2]
		if keyword == "windowrulev2" {
			keyword = "windowrule"
			changed = true
		}

		fields := strings.Split(rest, ",")
		cleaned := make([]string, 0, len(fields))
		for _, f := range fields {
			f = strings.TrimSpace(f)
			patched := anchorPattern.ReplaceAllString(f, "$1$2")
			if patched != f {
				changed = true
			}
			cleaned = append(cleaned, patched)
		}

		newLine := keyword + " = " + strings.Join(cleaned, " ")
		if newLine != stripped {
			changed = true
		}
		out = append(out, newLine)
	}

	if !changed {
		return nil
	}
	return os.WriteFile(path, []byte(strings.Join(out, "\n")+"\n"), 0o644)
}
