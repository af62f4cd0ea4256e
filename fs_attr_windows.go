// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build windows

package arcwalk

import "golang.org/x/sys/windows"

// readUnixAttributes is a no-op on Windows.
func (op *Operation) readUnixAttributes(fsPath string, attr FileAttributes) error {
	op.config.Logger().Debug("UNIX file attributes not supported on this platform", "path", fsPath)
	return nil
}

// readDosAttributes stamps the DOS attribute flags from the host filesystem,
// best effort.
func (op *Operation) readDosAttributes(fsPath string, attr FileAttributes) {
	p, err := windows.UTF16PtrFromString(fsPath)
	if err != nil {
		return
	}
	field, err := windows.GetFileAttributes(p)
	if err != nil {
		op.config.Logger().Debug("could not read DOS file attributes", "path", fsPath, "error", err)
		return
	}
	SetAttr(attr, AttrDos, DosAttributesForField(field))
}
