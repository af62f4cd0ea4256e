// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import "fmt"

// ArchiveFormat identifies an archive or compression container format. The
// list is extensible; the zero value is not a valid format.
type ArchiveFormat string

const (
	FormatAR           ArchiveFormat = "ar"
	FormatARJ          ArchiveFormat = "arj"
	FormatCPIO         ArchiveFormat = "cpio"
	FormatDUMP         ArchiveFormat = "dump"
	FormatRAR          ArchiveFormat = "rar"
	FormatSevenZ       ArchiveFormat = "7z"
	FormatTAR          ArchiveFormat = "tar"
	FormatZIP          ArchiveFormat = "zip"
	FormatBrotli       ArchiveFormat = "brotli"
	FormatBzip2        ArchiveFormat = "bzip2"
	FormatGzip         ArchiveFormat = "gzip"
	FormatLZMA         ArchiveFormat = "lzma"
	FormatLZ4Block     ArchiveFormat = "lz4-block"
	FormatLZ4Framed    ArchiveFormat = "lz4-framed"
	FormatLzip         ArchiveFormat = "lzip"
	FormatLzop         ArchiveFormat = "lzop"
	FormatSnappyFramed ArchiveFormat = "snappy-framed"
	FormatSnappyRaw    ArchiveFormat = "snappy-raw"
	FormatXZ           ArchiveFormat = "xz"
	FormatZ            ArchiveFormat = "z"
	FormatZlib         ArchiveFormat = "zlib"
	FormatZstd         ArchiveFormat = "zstd"
	FormatUnknown      ArchiveFormat = "unknown"
)

// String returns the format's display label.
func (f ArchiveFormat) String() string {
	return string(f)
}

// ArjHostOS is the "host OS" value used within an ARJ archive to indicate its
// origin, recorded on a file-by-file basis.
type ArjHostOS int

const (
	ArjHostMSDOS   ArjHostOS = 0
	ArjHostPRIMOS  ArjHostOS = 1
	ArjHostUnix    ArjHostOS = 2
	ArjHostAmiga   ArjHostOS = 3
	ArjHostMacOS   ArjHostOS = 4
	ArjHostOS2     ArjHostOS = 5
	ArjHostAppleGS ArjHostOS = 6
	ArjHostAtariST ArjHostOS = 7
	ArjHostNext    ArjHostOS = 8
	ArjHostVaxVMS  ArjHostOS = 9
	ArjHostWin95   ArjHostOS = 10
	ArjHostWin32   ArjHostOS = 11
)

var arjHostLabels = map[ArjHostOS]string{
	ArjHostMSDOS:   "MSDOS",
	ArjHostPRIMOS:  "PRIMOS",
	ArjHostUnix:    "UNIX",
	ArjHostAmiga:   "AMIGA",
	ArjHostMacOS:   "MAC-OS",
	ArjHostOS2:     "OS/2",
	ArjHostAppleGS: "APPLE GS",
	ArjHostAtariST: "ATARI ST",
	ArjHostNext:    "NEXT",
	ArjHostVaxVMS:  "VAX VMS",
	ArjHostWin95:   "WIN95",
	ArjHostWin32:   "WIN32",
}

// String returns the host OS label, or "unknown (n)" for unrecognised codes.
func (o ArjHostOS) String() string {
	if label, ok := arjHostLabels[o]; ok {
		return label
	}
	return fmt.Sprintf("unknown (%d)", int(o))
}

// GzipHostFS is the "operating system" (or rather filesystem) value stored in
// a GZIP header to indicate its origin.
type GzipHostFS int

const (
	GzipHostFAT         GzipHostFS = 0
	GzipHostAmiga       GzipHostFS = 1
	GzipHostVMS         GzipHostFS = 2
	GzipHostUnix        GzipHostFS = 3
	GzipHostVMCMS       GzipHostFS = 4
	GzipHostAtariTOS    GzipHostFS = 5
	GzipHostHPFS        GzipHostFS = 6
	GzipHostMacintosh   GzipHostFS = 7
	GzipHostZSystem     GzipHostFS = 8
	GzipHostCPM         GzipHostFS = 9
	GzipHostTOPS20      GzipHostFS = 10
	GzipHostNTFS        GzipHostFS = 11
	GzipHostQDOS        GzipHostFS = 12
	GzipHostAcornRISCOS GzipHostFS = 13
)

var gzipHostLabels = map[GzipHostFS]string{
	GzipHostFAT:         "FAT",
	GzipHostAmiga:       "Amiga",
	GzipHostVMS:         "VMS/OpenVMS",
	GzipHostUnix:        "Unix",
	GzipHostVMCMS:       "VM/CMS",
	GzipHostAtariTOS:    "Atari TOS",
	GzipHostHPFS:        "HPFS",
	GzipHostMacintosh:   "Macintosh",
	GzipHostZSystem:     "Z-System",
	GzipHostCPM:         "CP/M",
	GzipHostTOPS20:      "TOPS-20",
	GzipHostNTFS:        "NTFS",
	GzipHostQDOS:        "QDOS",
	GzipHostAcornRISCOS: "Acorn RISCOS",
}

// String returns the host filesystem label, or "unknown (n)" for
// unrecognised codes.
func (f GzipHostFS) String() string {
	if label, ok := gzipHostLabels[f]; ok {
		return label
	}
	return fmt.Sprintf("unknown (%d)", int(f))
}

// DosAttributes is a set of DOS/Windows file attribute flags: read-only,
// hidden, system and archive.
type DosAttributes uint32

const (
	dosReadOnly DosAttributes = 0x01
	dosHidden   DosAttributes = 0x02
	dosSystem   DosAttributes = 0x04
	dosArchive  DosAttributes = 0x20
)

// DosAttributesForField creates a DosAttributes value from the raw field
// used to store DOS (or Windows) attributes.
func DosAttributesForField(field uint32) DosAttributes {
	return DosAttributes(field)
}

// Field returns the raw attribute field.
func (d DosAttributes) Field() uint32 { return uint32(d) }

func (d DosAttributes) ReadOnly() bool { return d&dosReadOnly != 0 }
func (d DosAttributes) Hidden() bool   { return d&dosHidden != 0 }
func (d DosAttributes) System() bool   { return d&dosSystem != 0 }
func (d DosAttributes) Archive() bool  { return d&dosArchive != 0 }

// String renders the flags in "ASHR" order, with "-" for absent flags.
func (d DosAttributes) String() string {
	b := []byte("----")
	if d.Archive() {
		b[0] = 'A'
	}
	if d.System() {
		b[1] = 'S'
	}
	if d.Hidden() {
		b[2] = 'H'
	}
	if d.ReadOnly() {
		b[3] = 'R'
	}
	return string(b)
}
