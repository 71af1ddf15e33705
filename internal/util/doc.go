// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the rigchat packages.
//
// String helpers are display-width aware (go-runewidth) so status lines and
// previews line up in the terminal when text contains wide characters.
//
//	status := util.TruncateWidth(endpoint, 40)
//
// AtomicWriteFile is used when writing the config file so a crash never
// leaves a half-written file behind.
package util
