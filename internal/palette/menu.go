package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// menuBackend drives rofi in dmenu mode or dmenu itself. rofi reports the
// selected row index; dmenu echoes the label back.
type menuBackend struct {
	command string
	rofi    bool
	// run executes the menu program; replaced in tests.
	run func(command string, args []string, input string) (string, error)
}

func newMenuBackend(command string) *menuBackend {
	return &menuBackend{command: command, rofi: command == "rofi", run: runMenu}
}

func runMenu(command string, args []string, input string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return "", ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %s", command, msg)
		}
		return "", fmt.Errorf("%s failed: %w", command, err)
	}
	return selection, nil
}

func (b *menuBackend) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}
	input, active := b.formatInput(items)
	selection, err := b.run(b.command, b.buildArgs(prompt, active), input)
	if err != nil {
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	item, err := b.parseSelection(selection, items)
	if err != nil {
		return Item{}, err
	}
	// dmenu cannot refuse header rows.
	if item.IsHeader {
		return Item{}, ErrCancelled
	}
	return item, nil
}

func (b *menuBackend) buildArgs(prompt string, active []int) []string {
	if !b.rofi {
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}

	args := []string{"-dmenu", "-i"}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	// Index output: labels may contain markup.
	args = append(args, "-format", "i", "-no-custom", "-markup-rows")
	if len(active) > 0 {
		args = append(args, "-a", formatIndices(active), "-selected-row", strconv.Itoa(active[0]))
	}
	return args
}

func (b *menuBackend) formatInput(items []Item) (string, []int) {
	lines := make([]string, 0, len(items))
	var active []int
	for i, item := range items {
		lines = append(lines, b.formatItem(item))
		if item.IsActive && !item.IsHeader {
			active = append(active, i)
		}
	}
	return strings.Join(lines, "\n"), active
}

func (b *menuBackend) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if !b.rofi {
		return display
	}
	display = html.EscapeString(display)
	if item.IsHeader {
		// Single NUL, then key\x1fvalue pairs.
		return "<b>" + display + "</b>\x00nonselectable\x1ftrue"
	}
	return display
}

func (b *menuBackend) parseSelection(selection string, items []Item) (Item, error) {
	if b.rofi {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\x00", " ")
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
