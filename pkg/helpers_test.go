package pkg_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// createTestFile writes content to dir/name (creating parents) and sets its
// modification time.
func createTestFile(t *testing.T, dir, name string, content []byte, modTime time.Time) string {
	t.Helper()
	filePath := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
	require.NoError(t, os.WriteFile(filePath, content, 0644))
	require.NoError(t, os.Chtimes(filePath, modTime, modTime))
	return filePath
}

// tiffWithASCIITag returns a minimal little-endian TIFF with a single ASCII
// tag in IFD0, which goexif decodes like EXIF data.
func tiffWithASCIITag(tagID uint16, value string) []byte {
	ascii := append([]byte(value), 0x00)
	count := uint32(len(ascii))
	dataOffset := uint32(26) // header(8) + count(2) + entry(12) + nextIFD(4)

	data := []byte{0x49, 0x49, 0x2A, 0x00}           // little-endian TIFF header
	data = binary.LittleEndian.AppendUint32(data, 8) // first IFD offset
	data = binary.LittleEndian.AppendUint16(data, 1) // number of IFD entries
	data = binary.LittleEndian.AppendUint16(data, tagID)
	data = binary.LittleEndian.AppendUint16(data, 2) // ASCII type
	data = binary.LittleEndian.AppendUint32(data, count)
	data = binary.LittleEndian.AppendUint32(data, dataOffset)
	data = binary.LittleEndian.AppendUint32(data, 0) // next IFD offset
	return append(data, ascii...)
}

// minimalTIFF returns a TIFF with an empty IFD0.
func minimalTIFF() []byte {
	return []byte{
		0x49, 0x49, 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // first IFD offset
		0x00, 0x00, // number of IFD entries
		0x00, 0x00, 0x00, 0x00, // next IFD offset
	}
}

// mp4WithCreationTime returns an ISO BMFF file holding only moov/mvhd
// (version 0) with the given creation time in seconds since 1904.
func mp4WithCreationTime(created uint32) []byte {
	payload := []byte{0, 0, 0, 0} // version 0, flags
	payload = binary.BigEndian.AppendUint32(payload, created)
	payload = binary.BigEndian.AppendUint32(payload, created) // modification time
	payload = binary.BigEndian.AppendUint32(payload, 1000)    // timescale
	payload = binary.BigEndian.AppendUint32(payload, 0)       // duration
	payload = binary.BigEndian.AppendUint32(payload, 0x00010000)
	payload = binary.BigEndian.AppendUint16(payload, 0x0100)
	payload = append(payload, make([]byte, 2+8)...) // reserved
	for _, v := range []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000} {
		payload = binary.BigEndian.AppendUint32(payload, v)
	}
	payload = append(payload, make([]byte, 24)...) // pre_defined
	payload = binary.BigEndian.AppendUint32(payload, 2)

	mvhd := box("mvhd", payload)
	return box("moov", mvhd)
}

func box(typ string, payload []byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(8+len(payload)))
	out = append(out, typ...)
	return append(out, payload...)
}

// unixToMP4 converts a Unix time to seconds since 1904-01-01 UTC.
func unixToMP4(t time.Time) uint32 {
	return uint32(t.Unix() + 2082844800)
}

// tiffEntry is a raw IFD0 entry; value is the inline value or the offset
// of the out-of-line value.
type tiffEntry struct {
	id    uint16
	typ   uint16
	count uint32
	value uint32
}

// tiffPayloadOffset is where buildTIFF places the payload for n entries.
func tiffPayloadOffset(n int) uint32 {
	return uint32(8 + 2 + 12*n + 4)
}

// buildTIFF returns a little-endian TIFF with the given IFD0 entries
// followed by payload.
func buildTIFF(entries []tiffEntry, payload []byte) []byte {
	data := []byte{0x49, 0x49, 0x2A, 0x00}
	data = binary.LittleEndian.AppendUint32(data, 8)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(entries)))
	for _, e := range entries {
		data = binary.LittleEndian.AppendUint16(data, e.id)
		data = binary.LittleEndian.AppendUint16(data, e.typ)
		data = binary.LittleEndian.AppendUint32(data, e.count)
		data = binary.LittleEndian.AppendUint32(data, e.value)
	}
	data = binary.LittleEndian.AppendUint32(data, 0)
	return append(data, payload...)
}

// oversizedCountTIFF holds one LONG tag whose byte size overflows uint32.
func oversizedCountTIFF() []byte {
	return buildTIFF([]tiffEntry{{id: 0x0110, typ: 4, count: 0x40000001, value: 0}}, nil)
}

// jpegWithEXIF wraps a TIFF block into a minimal JPEG APP1 section.
func jpegWithEXIF(tiffData []byte) []byte {
	seg := append([]byte("Exif\x00\x00"), tiffData...)
	data := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	data = binary.BigEndian.AppendUint16(data, uint16(len(seg)+2))
	data = append(data, seg...)
	return append(data, 0xFF, 0xD9)
}
