package pkg

import (
	"regexp"
	"strconv"
)

// standardNamePattern matches names this tool produces:
// YYYYMMDD_HHMMSS[_N]_IMG.ext or YYYYMMDD_HHMMSS[_N]_VID.ext
var standardNamePattern = regexp.MustCompile(`^(\d{8})_(\d{6})(?:_\d+)?_(?:IMG|VID)\.\w+$`)

// IsStandardName reports whether filename already has the standardized
// shape, in which case it is left alone.
func IsStandardName(filename string) bool {
	return standardNamePattern.MatchString(filename)
}

// BaseName is a standardized name before disambiguation.
type BaseName struct {
	Token string
	Kind  MediaKind
	// Ext is the lowercase extension including the dot.
	Ext string
}

// Standardize builds the base name of file for the resolved token.
func Standardize(file MediaFile, token string) BaseName {
	return BaseName{Token: token, Kind: file.Kind, Ext: file.Ext}
}

// String returns the undecorated name, e.g. 20240101_120000_IMG.jpg.
func (b BaseName) String() string {
	return b.WithSuffix(0)
}

// WithSuffix returns the name with disambiguator n inserted before the
// kind tag. n == 0 means no disambiguator.
func (b BaseName) WithSuffix(n int) string {
	if n == 0 {
		return b.Token + "_" + b.Kind.Tag() + b.Ext
	}
	return b.Token + "_" + strconv.Itoa(n) + "_" + b.Kind.Tag() + b.Ext
}
