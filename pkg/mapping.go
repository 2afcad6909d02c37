package pkg

import (
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// RenameEntry is one planned rename. Paths are slash-separated and relative
// to the analyzed root.
type RenameEntry struct {
	// Dir is the containing directory, "" for the root.
	Dir          string
	OriginalName string
	NewName      string
	// Source tells which tier of the fallback chain produced the date-time.
	Source string
}

// OriginalPath returns the relative path of the file before the rename.
func (e RenameEntry) OriginalPath() string {
	return path.Join(e.Dir, e.OriginalName)
}

// NewPath returns the relative path of the file after the rename.
func (e RenameEntry) NewPath() string {
	return path.Join(e.Dir, e.NewName)
}

// FileError records a file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

// Mapping is the finalized result of analyzing a tree. Both the forward
// and the inverse scripts are rendered from it without further lookups.
type Mapping struct {
	Root    string
	Entries []RenameEntry
	// Skipped counts files that already had a standardized name.
	Skipped int
	// Failed lists files dropped because they could not be processed.
	Failed []FileError
}

// Renamed returns the number of planned renames.
func (m *Mapping) Renamed() int {
	return len(m.Entries)
}

// InversePair undoes one rename: the file at Path gets its Name back.
type InversePair struct {
	Path string
	Name string
}

// Inverse returns the renames that restore every original name, in the
// same order as Entries.
func (m *Mapping) Inverse() []InversePair {
	pairs := make([]InversePair, len(m.Entries))
	for i, e := range m.Entries {
		pairs[i] = InversePair{Path: e.NewPath(), Name: e.OriginalName}
	}
	return pairs
}

// MappingBuilder computes the rename mapping for a directory tree.
type MappingBuilder struct {
	Resolver *DateResolver
	Logger   zerolog.Logger
	// Progress, when set, is called after each discovered file is handled.
	Progress func(done, total int)
}

// NewMappingBuilder returns a builder resolving dates in loc.
func NewMappingBuilder(loc *time.Location, logger zerolog.Logger) *MappingBuilder {
	return &MappingBuilder{
		Resolver: NewDateResolver(loc, logger),
		Logger:   logger,
	}
}

// directoryGroup holds the files of one directory in discovery order.
type directoryGroup struct {
	dir   string
	files []MediaFile
}

// Build walks root and returns the mapping. The first pass collects every
// media file grouped by directory; the second pass resolves and
// disambiguates names one directory at a time, so every name already
// present in a directory is known before any new name there is chosen.
// A missing or non-directory root is the only error.
func (b *MappingBuilder) Build(root string) (*Mapping, error) {
	files, err := ScanMediaFiles(root, b.Logger)
	if err != nil {
		return nil, err
	}

	resolver := b.Resolver
	if resolver == nil {
		resolver = NewDateResolver(time.Local, b.Logger)
	}

	mapping := &Mapping{Root: root, Entries: []RenameEntry{}}
	done := 0
	total := len(files)
	for _, group := range groupByDirectory(files) {
		registry := b.directoryRegistry(root, group)

		for _, f := range group.files {
			b.handleFile(f, resolver, registry, mapping)
			done++
			if b.Progress != nil {
				b.Progress(done, total)
			}
		}
	}

	b.Logger.Debug().
		Int("renamed", mapping.Renamed()).
		Int("skipped", mapping.Skipped).
		Int("failed", len(mapping.Failed)).
		Msg("mapping built")
	return mapping, nil
}

// directoryRegistry reserves every name present in the directory, media
// or not, so a planned rename never targets an occupied name on a
// case-insensitive filesystem, whichever order the renames run in.
func (b *MappingBuilder) directoryRegistry(root string, group *directoryGroup) *CollisionResolver {
	registry := NewCollisionResolver()
	for _, f := range group.files {
		registry.Reserve(f.Name)
	}
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(group.dir)))
	if err != nil {
		b.Logger.Warn().Err(err).Str("dir", group.dir).Msg("cannot list directory, reserving media names only")
		return registry
	}
	for _, e := range entries {
		registry.Reserve(e.Name())
	}
	return registry
}

func (b *MappingBuilder) handleFile(f MediaFile, resolver *DateResolver, registry *CollisionResolver, mapping *Mapping) {
	if IsStandardName(f.Name) {
		mapping.Skipped++
		b.Logger.Debug().Str("file", f.RelPath()).Msg("already standardized, skipping")
		return
	}

	res, err := resolver.Resolve(f)
	if err != nil {
		b.Logger.Warn().Err(err).Str("file", f.RelPath()).Msg("cannot resolve date, skipping file")
		mapping.Failed = append(mapping.Failed, FileError{Path: f.RelPath(), Err: err})
		return
	}

	name := registry.Claim(Standardize(f, res.Token))
	mapping.Entries = append(mapping.Entries, RenameEntry{
		Dir:          f.Dir,
		OriginalName: f.Name,
		NewName:      name,
		Source:       res.Source,
	})
	b.Logger.Debug().
		Str("file", f.RelPath()).
		Str("new_name", name).
		Str("source", res.Source).
		Str("detail", res.Detail).
		Msg("planned rename")
}

// groupByDirectory keeps directories in order of first appearance and
// files in discovery order within each directory.
func groupByDirectory(files []MediaFile) []*directoryGroup {
	var groups []*directoryGroup
	index := make(map[string]*directoryGroup)
	for _, f := range files {
		g, ok := index[f.Dir]
		if !ok {
			g = &directoryGroup{dir: f.Dir}
			index[f.Dir] = g
			groups = append(groups, g)
		}
		g.files = append(g.files, f)
	}
	return groups
}
