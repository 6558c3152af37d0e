package source

import "fmt"

type FileID uint32

// FileFlags records how a file's content was obtained and normalized.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // added from memory, never written back
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source file. LineIdx holds the offset of every '\n'.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

func (f *File) Is(flag FileFlags) bool { return f.Flags&flag != 0 }

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Col) }
