package domain

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// MaxUploadBytes is the ceiling for every uploaded file.
const MaxUploadBytes = 5 * 1024 * 1024

// FileKind selects the validation rules and storage folder of an upload.
type FileKind string

const (
	FileResume      FileKind = "resume"
	FileAvatar      FileKind = "avatar"
	FileCompanyLogo FileKind = "company_logo"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the 5MB limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnknownFileKind     = errors.New("unknown file kind")
	ErrUploadFailed        = errors.New("upload failed")
	ErrFileNotFound        = errors.New("file not found")
	// ErrTransient marks failures worth retrying: timeouts, dropped
	// connections, gateway errors.
	ErrTransient = errors.New("transient failure")
)

var (
	imageTypes = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
	}
	resumeTypes = map[string]string{
		"application/pdf":    "pdf",
		"application/msword": "doc",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	}
)

// Folder is the top-level storage prefix for the kind.
func (k FileKind) Folder() string {
	switch k {
	case FileResume:
		return "resumes"
	case FileAvatar:
		return "avatars"
	case FileCompanyLogo:
		return "company_logos"
	}
	return ""
}

func (k FileKind) allowed() map[string]string {
	if k == FileResume {
		return resumeTypes
	}
	return imageTypes
}

// ParseFileKind validates a client supplied kind.
func ParseFileKind(s string) (FileKind, error) {
	k := FileKind(strings.ToLower(strings.TrimSpace(s)))
	if k.Folder() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownFileKind, s)
	}
	return k, nil
}

// ValidateUpload checks size and content type. It performs no I/O.
func ValidateUpload(kind FileKind, contentType string, size int64) error {
	if kind.Folder() == "" {
		return ErrUnknownFileKind
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	if _, ok := kind.allowed()[normalizeContentType(contentType)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	return nil
}

// Extension picks the stored extension: the original name's when present,
// otherwise the canonical one for the content type.
func Extension(kind FileKind, fileName, contentType string) string {
	if ext := strings.TrimPrefix(path.Ext(fileName), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return kind.allowed()[normalizeContentType(contentType)]
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// StoredFile describes an object in the blob store.
type StoredFile struct {
	Path         string `json:"path"`
	URL          string `json:"url"`
	ContentType  string `json:"content_type,omitempty"`
	Size         int64  `json:"size"`
	OriginalName string `json:"original_name,omitempty"`
	OwnerID      string `json:"owner_id,omitempty"`
}
