// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the rigchat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. A Theme built with a fixed "dark" or "light" mode pins lipgloss to
that background instead.

# Color System (colors.go)

  - Purple - Assistant turns and the typing indicator
  - Cyan - Brand color and user highlights
  - Emerald - Connected
  - Amber - Connecting and interrupted replies
  - Rose - Disconnected and errors

Every connection state also has an ASCII indicator in StatusIndicators so
the status bar reads correctly without color.

# Theme (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	bubble := theme.AssistantBubble.MaxWidth(theme.BubbleWidth()).Render(text)
*/
package styles
