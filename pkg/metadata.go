package pkg

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mp4 "github.com/abema/go-mp4"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrNoCaptureTime is returned when a file carries no usable embedded capture time.
var ErrNoCaptureTime = errors.New("no embedded capture time")

// Capture is a capture time read from embedded metadata.
type Capture struct {
	Time time.Time
	// Source names the field it came from, e.g. "EXIF:DateTimeOriginal".
	Source string
}

// MetadataExtractor reads the capture time embedded in a media file.
// Any failure (unreadable file, corrupt or missing metadata) is returned
// as an error and means "no value" to the caller.
type MetadataExtractor interface {
	Extract(file MediaFile) (Capture, error)
}

// exifDateFields lists the EXIF tags consulted, most authoritative first.
var exifDateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTime,
	exif.DateTimeDigitized,
}

// EXIFExtractor reads capture times from EXIF data. EXIF stores wall clock
// fields without a zone, so they are interpreted in Location.
type EXIFExtractor struct {
	Location *time.Location
}

func NewEXIFExtractor(loc *time.Location) *EXIFExtractor {
	return &EXIFExtractor{Location: loc}
}

func (e *EXIFExtractor) Extract(file MediaFile) (Capture, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return Capture{}, fmt.Errorf("failed to read file %s: %w", file.Path, err)
	}

	tiffData, ok := locateTIFF(data)
	if !ok {
		return Capture{}, fmt.Errorf("%w: no EXIF data in %s", ErrNoCaptureTime, file.Path)
	}
	if err := checkTIFFBounds(tiffData); err != nil {
		return Capture{}, fmt.Errorf("%w: %v in %s", ErrNoCaptureTime, err, file.Path)
	}

	// A broken Exif, GPS or Interoperability sub-IFD is not critical; IFD0
	// tags are still usable.
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Capture{}, fmt.Errorf("failed to decode EXIF data from %s: %w", file.Path, err)
	}

	for _, field := range exifDateFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		t, err := parseExifDateTime(tag, e.Location)
		if err != nil {
			continue
		}
		return Capture{Time: t, Source: "EXIF:" + string(field)}, nil
	}
	return Capture{}, fmt.Errorf("%w in EXIF of %s", ErrNoCaptureTime, file.Path)
}

// parseExifDateTime parses a "YYYY:MM:DD HH:MM:SS" tag value in loc.
// Placeholder values such as "0000:00:00 00:00:00" fail to parse.
func parseExifDateTime(tag *tiff.Tag, loc *time.Location) (time.Time, error) {
	if tag == nil {
		return time.Time{}, fmt.Errorf("tag is nil")
	}
	if loc == nil {
		loc = time.Local
	}
	dateStr, err := tag.StringVal() // Handles potential null terminators.
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get string value from EXIF date tag: %w", err)
	}
	const layout = "2006:01:02 15:04:05"
	t, err := time.ParseInLocation(layout, strings.TrimSpace(dateStr), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse EXIF date string '%s': %w", dateStr, err)
	}
	return t, nil
}

// appleEpochOffset is the number of seconds between 1904-01-01 UTC, the
// epoch of ISO BMFF timestamps, and the Unix epoch.
const appleEpochOffset = 2082844800

// isoBaseMediaExtensions are the recognized video containers that carry a
// moov/mvhd box.
var isoBaseMediaExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".3gp": true,
}

// MP4Extractor reads the creation time of ISO BMFF videos from moov/mvhd.
type MP4Extractor struct{}

func NewMP4Extractor() *MP4Extractor {
	return &MP4Extractor{}
}

func (e *MP4Extractor) Extract(file MediaFile) (Capture, error) {
	if !isoBaseMediaExtensions[file.Ext] {
		return Capture{}, fmt.Errorf("%w: %s is not an ISO BMFF container", ErrNoCaptureTime, file.Name)
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Capture{}, fmt.Errorf("failed to open file %s: %w", file.Path, err)
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxesWithPayload(f, nil, []mp4.BoxPath{
		{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()},
	})
	if err != nil {
		return Capture{}, fmt.Errorf("failed to read MP4 structure of %s: %w", file.Path, err)
	}

	for _, box := range boxes {
		mvhd, ok := box.Payload.(*mp4.Mvhd)
		if !ok {
			continue
		}
		created := mvhd.GetCreationTime()
		if created == 0 {
			return Capture{}, fmt.Errorf("%w: mvhd creation time is zero in %s", ErrNoCaptureTime, file.Path)
		}
		if created < appleEpochOffset {
			return Capture{}, fmt.Errorf("%w: mvhd creation time predates the Unix epoch in %s", ErrNoCaptureTime, file.Path)
		}
		return Capture{
			Time:   time.Unix(int64(created-appleEpochOffset), 0).UTC(),
			Source: "MP4:mvhd",
		}, nil
	}
	return Capture{}, fmt.Errorf("%w: mvhd box not found in %s", ErrNoCaptureTime, file.Path)
}

// CompositeExtractor sends images to EXIF and videos to the MP4 reader.
type CompositeExtractor struct {
	exif *EXIFExtractor
	mp4  *MP4Extractor
}

// NewMetadataExtractor returns the default extractor for all recognized media.
func NewMetadataExtractor(loc *time.Location) *CompositeExtractor {
	return &CompositeExtractor{
		exif: NewEXIFExtractor(loc),
		mp4:  NewMP4Extractor(),
	}
}

func (e *CompositeExtractor) Extract(file MediaFile) (Capture, error) {
	if file.Kind == KindVideo {
		return e.mp4.Extract(file)
	}
	return e.exif.Extract(file)
}
