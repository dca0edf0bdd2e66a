package constants

import "strings"

// Well-known storage folders. The uploaded and failed folders are flat; the
// archive root is the base of the classified folder tree.
const (
	UploadedFolder = "_jobs_uploaded"
	FailedFolder   = "_jobs_failed"
	ArchiveFolder  = "unistad"
)

// FolderDelimiter separates folder segments in storage paths. Backends map it
// to their native separator.
const FolderDelimiter = "/"

// PDFExtension is the only file type accepted for ingestion.
const PDFExtension = ".pdf"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDF reports whether name carries the .pdf extension (any casing).
func IsPDF(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return NormalizeExt(name[i:]) == "pdf"
}
