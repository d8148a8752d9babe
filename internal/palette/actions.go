package palette

import (
	"strconv"
	"strings"

	"github.com/1broseidon/stackwm/internal/wm"
)

var sections = []string{"Workspaces", "Send window to", "Windows", "Layout", "Session"}

func sectionOf(action string) int {
	switch {
	case strings.HasPrefix(action, "workspace-"):
		return 0
	case strings.HasPrefix(action, "move-to-workspace-"):
		return 1
	case strings.HasSuffix(action, "-layout"), strings.HasPrefix(action, "layout "),
		action == "increase-master", action == "decrease-master",
		action == "expand-main", action == "shrink-main":
		return 3
	case action == "quit", action == "spawn-terminal":
		return 4
	default:
		return 2
	}
}

// ActionItems groups action names under section headers. When st is non-nil,
// workspace entries carry the workspace name and the visible workspaces are
// marked active.
func ActionItems(names []string, st *wm.Status) []Item {
	groups := make([][]Item, len(sections))
	for _, name := range names {
		item := Item{Label: name, Action: name}
		sec := sectionOf(name)
		if sec <= 1 && st != nil {
			prefix := "workspace-"
			if sec == 1 {
				prefix = "move-to-workspace-"
			}
			if n, err := strconv.Atoi(strings.TrimPrefix(name, prefix)); err == nil && n >= 1 && n <= len(st.Workspaces) {
				ws := st.Workspaces[n-1]
				item.Label = name + "  " + ws.Name
				item.IsActive = sec == 0 && ws.Visible
			}
		}
		groups[sec] = append(groups[sec], item)
	}

	var items []Item
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		items = append(items, Item{Label: sections[i], IsHeader: true})
		items = append(items, group...)
	}
	return items
}
