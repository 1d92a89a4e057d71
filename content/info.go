// SPDX-License-Identifier: Unlicense OR MIT

package content

import (
	"strings"
	"time"
)

// Column indexes the projection used for document queries.
type Column int

const (
	ColumnDocumentID Column = iota
	ColumnDisplayName
	ColumnFlags
	ColumnIcon
	ColumnLastModified
	ColumnMimeType
	ColumnSize
	ColumnSummary
)

// Projection lists the DocumentsContract.Document columns in Column order.
var Projection = []string{
	"document_id",
	"_display_name",
	"flags",
	"icon",
	"last_modified",
	"mime_type",
	"_size",
	"summary",
}

// Document flags from DocumentsContract.Document.
const (
	FlagSupportsWrite  = 0x2
	FlagSupportsDelete = 0x4
	FlagSupportsRename = 0x40
	FlagVirtual        = 0x200
)

// DirectoryMimeType is the mime type providers report for directories.
const DirectoryMimeType = "vnd.android.document/directory"

// Row is the current row of a document query cursor.
type Row interface {
	IsNull(c Column) bool
	String(c Column) string
	Int(c Column) int32
	Long(c Column) int64
}

// Attribute names understood by Matcher.
const (
	AttrName         = "standard::name"
	AttrDisplayName  = "standard::display-name"
	AttrType         = "standard::type"
	AttrContentType  = "standard::content-type"
	AttrDescription  = "standard::description"
	AttrIcon         = "standard::icon"
	AttrSize         = "standard::size"
	AttrVirtual      = "standard::is-virtual"
	AttrCanRead      = "access::can-read"
	AttrCanWrite     = "access::can-write"
	AttrCanDelete    = "access::can-delete"
	AttrCanRename    = "access::can-rename"
	AttrTimeModified = "time::modified"
	AttrDocumentID   = "content::document-id"
)

// Matcher selects attributes from a comma separated list of attribute
// names, "namespace::*" wildcards or "*".
type Matcher struct {
	all    bool
	names  map[string]bool
	spaces map[string]bool
}

// NewMatcher parses attrs. An empty list matches nothing.
func NewMatcher(attrs string) *Matcher {
	m := &Matcher{names: make(map[string]bool), spaces: make(map[string]bool)}
	for _, a := range strings.Split(attrs, ",") {
		a = strings.TrimSpace(a)
		switch {
		case a == "":
		case a == "*":
			m.all = true
		case strings.HasSuffix(a, "::*"):
			m.spaces[strings.TrimSuffix(a, "::*")] = true
		default:
			m.names[a] = true
		}
	}
	return m
}

// Matches reports whether attr was requested. A nil Matcher matches
// everything.
func (m *Matcher) Matches(attr string) bool {
	if m == nil || m.all || m.names[attr] {
		return true
	}
	ns, _, ok := strings.Cut(attr, "::")
	return ok && m.spaces[ns]
}

// FileType is the kind of a document.
type FileType uint8

const (
	TypeUnknown FileType = iota
	TypeRegular
	TypeDirectory
)

// FileInfo describes a document. Fields not requested by the Matcher, or
// null in the row, keep their zero values.
type FileInfo struct {
	DocumentID  string
	Name        string
	DisplayName string
	Type        FileType
	ContentType string
	Description string
	// Icon is the provider's icon resource, or zero.
	Icon    int32
	Size    int64
	HasSize bool
	ModTime time.Time

	CanRead   bool
	CanWrite  bool
	CanDelete bool
	CanRename bool
	Virtual   bool
}

// ContentTypeFunc maps a mime type to a content type.
type ContentTypeFunc func(mime string) string

// InfoFromRow builds the FileInfo of the document at row. A nil
// contentType keeps mime types as content types.
func InfoFromRow(row Row, m *Matcher, contentType ContentTypeFunc) *FileInfo {
	info := new(FileInfo)
	if m.Matches(AttrDocumentID) {
		info.DocumentID = row.String(ColumnDocumentID)
	}
	name := row.String(ColumnDisplayName)
	if m.Matches(AttrDisplayName) {
		info.DisplayName = name
	}
	if m.Matches(AttrName) {
		info.Name = name
	}
	var mime string
	if !row.IsNull(ColumnMimeType) {
		mime = row.String(ColumnMimeType)
	}
	if m.Matches(AttrContentType) && mime != "" {
		if contentType != nil {
			info.ContentType = contentType(mime)
		} else {
			info.ContentType = mime
		}
	}
	if m.Matches(AttrType) {
		switch {
		case mime == DirectoryMimeType:
			info.Type = TypeDirectory
		case mime != "":
			info.Type = TypeRegular
		}
	}
	if m.Matches(AttrDescription) && !row.IsNull(ColumnSummary) {
		info.Description = row.String(ColumnSummary)
	}
	if m.Matches(AttrIcon) && !row.IsNull(ColumnIcon) {
		info.Icon = row.Int(ColumnIcon)
	}

	// Providers only list documents the caller may read.
	info.CanRead = true
	flags := row.Int(ColumnFlags)
	if m.Matches(AttrCanWrite) {
		info.CanWrite = flags&FlagSupportsWrite != 0
	}
	if m.Matches(AttrCanDelete) {
		info.CanDelete = flags&FlagSupportsDelete != 0
	}
	if m.Matches(AttrCanRename) {
		info.CanRename = flags&FlagSupportsRename != 0
	}
	if m.Matches(AttrVirtual) {
		info.Virtual = flags&FlagVirtual != 0
	}

	if m.Matches(AttrSize) && !row.IsNull(ColumnSize) {
		info.Size = row.Long(ColumnSize)
		info.HasSize = true
	}
	if m.Matches(AttrTimeModified) && !row.IsNull(ColumnLastModified) {
		info.ModTime = time.UnixMilli(row.Long(ColumnLastModified)).UTC()
	}
	return info
}
