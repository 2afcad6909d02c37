package pkg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/rs/zerolog"
)

var (
	// ErrRootNotFound is returned when the directory to analyze does not exist.
	ErrRootNotFound = errors.New("root directory does not exist")
	// ErrRootNotDirectory is returned when the path to analyze is not a directory.
	ErrRootNotDirectory = errors.New("root path is not a directory")
)

// MediaKind tells images and videos apart. It decides the IMG/VID tag of a
// standardized name.
type MediaKind int

const (
	KindImage MediaKind = iota
	KindVideo
)

// Tag returns the tag used in standardized names.
func (k MediaKind) Tag() string {
	if k == KindVideo {
		return "VID"
	}
	return "IMG"
}

func (k MediaKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// mediaExtensions maps every recognized (lowercase) extension to its kind.
// Files with any other extension are ignored by ScanMediaFiles.
var mediaExtensions = map[string]MediaKind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".avi":  KindVideo,
	".mkv":  KindVideo,
	".3gp":  KindVideo,
}

// MediaFile is one discovered photo or video.
type MediaFile struct {
	// Path is the absolute path on disk.
	Path string
	// Dir is the slash-separated directory relative to the scanned root, "" for the root itself.
	Dir string
	// Name is the original base filename.
	Name string
	// Ext is the lowercase extension including the dot.
	Ext  string
	Kind MediaKind
}

// RelPath returns the slash-separated path relative to the scanned root.
func (f MediaFile) RelPath() string {
	if f.Dir == "" {
		return f.Name
	}
	return f.Dir + "/" + f.Name
}

// LookupMediaKind reports the kind of a filename by its extension
// (case-insensitive). ok is false for unrecognized extensions.
func LookupMediaKind(filename string) (kind MediaKind, ok bool) {
	kind, ok = mediaExtensions[strings.ToLower(filepath.Ext(filename))]
	return kind, ok
}

// IsMediaExtension checks if the given path has a recognized photo or video extension.
func IsMediaExtension(path string) bool {
	_, ok := LookupMediaKind(path)
	return ok
}

// NewMediaFile describes the file at path as seen from root. The file
// must have a recognized extension.
func NewMediaFile(root, path string) (MediaFile, error) {
	kind, ok := LookupMediaKind(path)
	if !ok {
		return MediaFile{}, fmt.Errorf("unrecognized media extension: %s", path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return MediaFile{}, fmt.Errorf("failed to relativize %s against %s: %w", path, root, err)
	}
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		dir = ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return MediaFile{
		Path: abs,
		Dir:  dir,
		Name: filepath.Base(path),
		Ext:  strings.ToLower(filepath.Ext(path)),
		Kind: kind,
	}, nil
}

// CheckRoot verifies that root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: '%s'", ErrRootNotFound, root)
		}
		return fmt.Errorf("error accessing root directory '%s': %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: '%s'", ErrRootNotDirectory, root)
	}
	return nil
}

// ScanMediaFiles recursively walks root and returns every file with a
// recognized media extension in discovery order (lexical per directory, as
// filepath.WalkDir visits them). Unreadable subdirectories are logged and
// skipped; only a bad root is an error.
func ScanMediaFiles(root string, logger zerolog.Logger) ([]MediaFile, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	var files []MediaFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("skipping inaccessible path")
			return nil // Returning nil continues the walk
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !IsMediaExtension(path) {
			return nil
		}
		file, err := NewMediaFile(root, path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping file")
			return nil
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking through root directory '%s': %w", root, err)
	}
	return files, nil
}

// StatModTime returns the filesystem modification time of path.
func StatModTime(path string) (time.Time, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return ts.ModTime(), nil
}
