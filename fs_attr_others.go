// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build !unix && !windows

package arcwalk

// readUnixAttributes is a no-op on platforms without UNIX metadata.
func (op *Operation) readUnixAttributes(fsPath string, attr FileAttributes) error {
	op.config.Logger().Debug("UNIX file attributes not supported on this platform", "path", fsPath)
	return nil
}

// readDosAttributes is a no-op on platforms without DOS metadata.
func (op *Operation) readDosAttributes(fsPath string, attr FileAttributes) {
	op.config.Logger().Debug("DOS file attributes not supported on this platform", "path", fsPath)
}
