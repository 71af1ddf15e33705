// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rigchat command line.
//
// The root command resolves config (file, then RIGCHAT_* environment, then
// flags), sets up logging, opens one transport session and runs either the
// full-screen chat view or the line-mode shell over it. The full-screen view
// is used when stdin and stdout are terminals and --plain is not set.
//
// # Commands
//
//   - rigchat: chat with the configured server
//   - config init|show|path: manage the config file
//   - version: print version information
//
// # Exit Codes
//
//   - 0: success
//   - 1: general error
//   - 2: invalid flag values
//   - 3: config file or settings error
//
// A lost or refused connection is not an exit error. The chat view shows it
// and stays open, disconnected, until the user quits. The shell prints it
// and returns.
package cli
