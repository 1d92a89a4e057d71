// SPDX-License-Identifier: Unlicense OR MIT

package content

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestErrorFor(t *testing.T) {
	tests := []struct {
		class string
		want  ErrorKind
	}{
		{"java.io.EOFException", BrokenPipe},
		{"java.io.FileNotFoundException", NotFound},
		{"java.nio.file.AccessDeniedException", PermissionDenied},
		{"java.nio.file.DirectoryNotEmptyException", NotEmpty},
		{"java.nio.file.FileAlreadyExistsException", Exists},
		{"java.nio.file.FileSystemLoopException", PermissionDenied},
		{"java.nio.file.NoSuchFileException", WouldRecurse},
		{"java.nio.file.NotDirectoryException", NotDirectory},
		{"java.net.MalformedURLException", InvalidFilename},
		{"java.nio.channels.ClosedChannelException", Closed},
		{"java.lang.IllegalStateException", Unknown},
		{"java.io.IOException", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			err := ErrorFor(tt.class, "boom", nil)
			if err.Kind != tt.want {
				t.Errorf("kind %v, want %v", err.Kind, tt.want)
			}
			if err.Message != "boom" || err.Class != tt.class {
				t.Errorf("error %+v lost the exception", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) is false", err, tt.want)
			}
		})
	}
}

func TestErrorForSubclass(t *testing.T) {
	supers := map[string]string{
		"com.example.GoneException": "java.io.FileNotFoundException",
	}
	isInstance := func(class, target string) bool {
		for c := class; c != ""; c = supers[c] {
			if c == target {
				return true
			}
		}
		return false
	}
	err := ErrorFor("com.example.GoneException", "", isInstance)
	if err.Kind != NotFound {
		t.Errorf("kind %v, want %v", err.Kind, NotFound)
	}
	if errors.Is(err, PermissionDenied) {
		t.Error("error matches an unrelated kind")
	}
	if got, want := err.Error(), "content: not found"; got != want {
		t.Errorf("message %q, want %q", got, want)
	}
}

func TestFromException(t *testing.T) {
	plain := errors.New("plain")
	if got := FromException(plain, nil); got != plain {
		t.Errorf("non-exception error converted to %v", got)
	}
	if got := FromException(nil, nil); got != nil {
		t.Errorf("nil converted to %v", got)
	}
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		attrs string
		attr  string
		want  bool
	}{
		{"*", AttrSize, true},
		{"standard::*", AttrSize, true},
		{"standard::*", AttrCanWrite, false},
		{"standard::size, time::modified", AttrTimeModified, true},
		{"standard::size", AttrDisplayName, false},
		{"", AttrName, false},
	}
	for _, tt := range tests {
		if got := NewMatcher(tt.attrs).Matches(tt.attr); got != tt.want {
			t.Errorf("%q matches %q: %v, want %v", tt.attrs, tt.attr, got, tt.want)
		}
	}
	var all *Matcher
	if !all.Matches(AttrIcon) {
		t.Error("nil matcher rejected an attribute")
	}
}

// row is a query row; absent columns are null.
type row map[Column]any

func (r row) IsNull(c Column) bool {
	_, ok := r[c]
	return !ok
}

func (r row) String(c Column) string {
	s, _ := r[c].(string)
	return s
}

func (r row) Int(c Column) int32 {
	i, _ := r[c].(int32)
	return i
}

func (r row) Long(c Column) int64 {
	i, _ := r[c].(int64)
	return i
}

func TestInfoFromRow(t *testing.T) {
	r := row{
		ColumnDocumentID:   "primary:Download/a.txt",
		ColumnDisplayName:  "a.txt",
		ColumnFlags:        int32(FlagSupportsWrite | FlagSupportsRename),
		ColumnIcon:         int32(7),
		ColumnLastModified: int64(1_700_000_000_123),
		ColumnMimeType:     "text/plain",
		ColumnSize:         int64(42),
		ColumnSummary:      "notes",
	}
	got := InfoFromRow(r, nil, func(mime string) string { return "ct:" + mime })
	want := &FileInfo{
		DocumentID:  "primary:Download/a.txt",
		Name:        "a.txt",
		DisplayName: "a.txt",
		Type:        TypeRegular,
		ContentType: "ct:text/plain",
		Description: "notes",
		Icon:        7,
		Size:        42,
		HasSize:     true,
		ModTime:     time.Date(2023, time.November, 14, 22, 13, 20, 123e6, time.UTC),
		CanRead:     true,
		CanWrite:    true,
		CanRename:   true,
	}
	if !got.ModTime.Equal(want.ModTime) {
		t.Errorf("modified %v, want %v", got.ModTime, want.ModTime)
	}
	got.ModTime, want.ModTime = time.Time{}, time.Time{}
	if *got != *want {
		t.Errorf("info\n%+v\nwant\n%+v", got, want)
	}
}

func TestInfoFromRowPartial(t *testing.T) {
	r := row{
		ColumnDisplayName: "Pictures",
		ColumnFlags:       int32(FlagSupportsDelete | FlagVirtual),
		ColumnMimeType:    DirectoryMimeType,
	}
	got := InfoFromRow(r, NewMatcher("standard::*,access::can-delete"), nil)
	if got.Type != TypeDirectory {
		t.Errorf("type %v, want directory", got.Type)
	}
	if got.ContentType != DirectoryMimeType {
		t.Errorf("content type %q", got.ContentType)
	}
	if !got.CanDelete || !got.Virtual || got.CanWrite {
		t.Errorf("flags delete %v virtual %v write %v", got.CanDelete, got.Virtual, got.CanWrite)
	}
	if got.HasSize || !got.ModTime.IsZero() || got.Description != "" {
		t.Error("null columns filled in")
	}
	if got.DocumentID != "" {
		t.Error("unrequested document id filled in")
	}
}

// stream serves data in reads no longer than max.
type stream struct {
	data   []byte
	max    int
	reads  []int
	err    error
	closed int
	// empty makes reads return EmptyRead while data remains.
	empty bool
}

func (s *stream) Read(p []byte) (int, error) {
	s.reads = append(s.reads, len(p))
	if s.err != nil {
		return 0, s.err
	}
	if s.empty {
		return EmptyRead, nil
	}
	if len(s.data) == 0 {
		return EOFRead, nil
	}
	n := copy(p[:min(len(p), s.max)], s.data)
	s.data = s.data[n:]
	return n, nil
}

func (s *stream) Skip(n int64) (int64, error) {
	n = min(n, int64(len(s.data)))
	s.data = s.data[n:]
	return n, nil
}

func (s *stream) Close() error {
	s.closed++
	return nil
}

func TestReaderChunks(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)
	s := &stream{data: bytes.Clone(data), max: ChunkSize}
	r := NewReader(s)
	p := make([]byte, len(data))
	n, err := r.Read(p)
	if err != nil || n != len(data) {
		t.Fatalf("read %d, %v", n, err)
	}
	if !bytes.Equal(p, data) {
		t.Error("data mismatch")
	}
	if want := []int{4096, 4096, 1808}; len(s.reads) != len(want) || s.reads[0] != want[0] || s.reads[2] != want[2] {
		t.Errorf("platform reads %v, want %v", s.reads, want)
	}
	if n, err := r.Read(p); n != 0 || err != io.EOF {
		t.Errorf("read at end: %d, %v", n, err)
	}
}

func TestReaderShortReads(t *testing.T) {
	data := []byte("hello, content provider")
	s := &stream{data: bytes.Clone(data), max: 5}
	got, err := io.ReadAll(NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read %q, want %q", got, data)
	}
}

func TestReaderEmptyReadEnds(t *testing.T) {
	s := &stream{data: []byte("unread"), max: ChunkSize, empty: true}
	r := NewReader(s)
	if n, err := r.Read(make([]byte, 10)); n != 0 || err != io.EOF {
		t.Errorf("read %d, %v, want end of stream", n, err)
	}
	s.empty = false
	if n, err := r.Read(make([]byte, 10)); n != 0 || err != io.EOF {
		t.Errorf("read after the end %d, %v", n, err)
	}
	if len(s.reads) != 1 {
		t.Errorf("%d platform reads, want 1", len(s.reads))
	}
}

func TestReaderError(t *testing.T) {
	want := ErrorFor("java.io.EOFException", "pipe", nil)
	s := &stream{err: want}
	_, err := NewReader(s).Read(make([]byte, 8))
	if !errors.Is(err, BrokenPipe) {
		t.Errorf("error %v, want %v", err, BrokenPipe)
	}
}

func TestReaderClose(t *testing.T) {
	s := &stream{data: []byte("abcdef"), max: ChunkSize}
	r := NewReader(s)
	if n, err := r.Skip(2); n != 2 || err != nil {
		t.Fatalf("skip %d, %v", n, err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if s.closed != 1 {
		t.Errorf("platform stream closed %d times", s.closed)
	}
	if _, err := r.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Errorf("read after close: %v", err)
	}
	if _, err := r.Skip(1); !errors.Is(err, ErrClosed) {
		t.Errorf("skip after close: %v", err)
	}
}
