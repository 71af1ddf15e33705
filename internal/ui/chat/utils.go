// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// FORMATTING UTILITIES
// =============================================================================

// formatTimestamp formats a timestamp for display next to a turn.
//   - Today: just time (e.g., "15:04")
//   - This week: day and time (e.g., "Mon 15:04")
//   - Older: date and time (e.g., "Jan 2 15:04")
func formatTimestamp(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Jan 2 15:04")
}

// copyToClipboard copies text to the system clipboard.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// lastAssistantContent returns the content of the most recent assistant turn.
func lastAssistantContent(tr model.Transcript) (string, bool) {
	for i := tr.Len() - 1; i >= 0; i-- {
		if turn := tr.At(i); turn.IsAssistant() {
			return turn.Content, true
		}
	}
	return "", false
}

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// wrapText wraps text to a maximum display width. It preserves existing line
// breaks and breaks long lines at the last space that fits.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		runes := []rune(line)
		for runewidth.StringWidth(string(runes)) > maxWidth {
			// Longest prefix that fits, in runes.
			fit, width := 0, 0
			for fit < len(runes) {
				w := runewidth.RuneWidth(runes[fit])
				if width+w > maxWidth {
					break
				}
				width += w
				fit++
			}
			if fit == 0 {
				fit = 1
			}

			breakPoint := fit
			for j := fit; j > 0; j-- {
				if j < len(runes) && runes[j] == ' ' {
					breakPoint = j
					break
				}
			}

			result.WriteString(string(runes[:breakPoint]))
			result.WriteString("\n")
			runes = []rune(strings.TrimLeft(string(runes[breakPoint:]), " "))
		}
		result.WriteString(string(runes))
	}

	return result.String()
}

// calculateContentWidth returns the wrap width for a bubble of the given
// outer width. Returns at least 3.
func calculateContentWidth(totalWidth, margin int) int {
	contentWidth := totalWidth - margin
	if contentWidth < 3 {
		contentWidth = 3
	}
	return contentWidth
}
