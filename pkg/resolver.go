package pkg

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Where a resolved date-time came from.
const (
	SourceFilename = "filename"
	SourceMetadata = "metadata"
	SourceModTime  = "mtime"
)

// Resolution is the outcome of resolving one file's capture date-time.
type Resolution struct {
	Token string
	// Source is SourceFilename, SourceMetadata or SourceModTime.
	Source string
	// Detail names the rule or metadata field used; empty for mtime.
	Detail string
}

// DateResolver runs the fallback chain: filename pattern, then embedded
// metadata, then filesystem modification time.
type DateResolver struct {
	Matcher  *PatternMatcher
	Metadata MetadataExtractor
	// ModTime looks up the filesystem modification time.
	ModTime  func(path string) (time.Time, error)
	Location *time.Location
	Logger   zerolog.Logger
}

// NewDateResolver wires the default matcher, metadata extractor and mtime
// lookup, all resolving in loc (time.Local when nil).
func NewDateResolver(loc *time.Location, logger zerolog.Logger) *DateResolver {
	if loc == nil {
		loc = time.Local
	}
	return &DateResolver{
		Matcher:  NewPatternMatcher(loc),
		Metadata: NewMetadataExtractor(loc),
		ModTime:  StatModTime,
		Location: loc,
		Logger:   logger,
	}
}

// Resolve always produces a token for a file that still exists. The only
// error is a failed mtime lookup, i.e. the file vanished or became
// unreadable after it was discovered.
func (r *DateResolver) Resolve(file MediaFile) (Resolution, error) {
	if r.Matcher != nil {
		if token, rule, ok := r.Matcher.Match(file.Name); ok {
			return Resolution{Token: token, Source: SourceFilename, Detail: rule}, nil
		}
	}

	if r.Metadata != nil {
		capture, err := r.Metadata.Extract(file)
		if err == nil {
			token, fmtErr := FormatToken(capture.Time, r.Location)
			if fmtErr == nil {
				return Resolution{Token: token, Source: SourceMetadata, Detail: capture.Source}, nil
			}
			err = fmtErr
		}
		r.Logger.Debug().Err(err).Str("file", file.RelPath()).Msg("no usable metadata, using modification time")
	}

	modTime := r.ModTime
	if modTime == nil {
		modTime = StatModTime
	}
	t, err := modTime(file.Path)
	if err != nil {
		return Resolution{}, err
	}
	token, err := FormatToken(t, r.Location)
	if err != nil {
		return Resolution{}, fmt.Errorf("unusable modification time for %s: %w", file.Path, err)
	}
	return Resolution{Token: token, Source: SourceModTime}, nil
}
