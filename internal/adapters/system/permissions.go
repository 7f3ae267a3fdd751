// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package system

// Permission bits for files widgetctl writes.
const (
	// FilePermUserRW allows read/write for user only (0600).
	FilePermUserRW = 0o600

	// DirPermDefault is the default directory permission (0755).
	DirPermDefault = 0o755
)
