// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package arcwalk

import (
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// readUnixAttributes stamps owner, group and permission metadata from the
// host filesystem. Name lookups are best effort; numeric IDs are always
// recorded.
func (op *Operation) readUnixAttributes(fsPath string, attr FileAttributes) error {
	var st unix.Stat_t
	var err error
	if op.config.FollowLinks() {
		err = unix.Stat(fsPath, &st)
	} else {
		err = unix.Lstat(fsPath, &st)
	}
	if err != nil {
		return err
	}

	SetAttr(attr, AttrUserID, int64(st.Uid))
	SetAttr(attr, AttrGroupID, int64(st.Gid))
	SetAttr(attr, AttrUnixPermissions, PermissionsForMode(uint32(st.Mode)))

	if u, err := user.LookupId(strconv.FormatUint(uint64(st.Uid), 10)); err == nil {
		SetAttr(attr, AttrUserName, u.Username)
	}
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(st.Gid), 10)); err == nil {
		SetAttr(attr, AttrGroupName, g.Name)
	}
	return nil
}

// readDosAttributes is a no-op off Windows.
func (op *Operation) readDosAttributes(fsPath string, attr FileAttributes) {
	op.config.Logger().Debug("DOS file attributes not supported on this platform", "path", fsPath)
}
