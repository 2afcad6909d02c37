package pkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// errCorruptEXIF marks EXIF data that goexif cannot decode within bounded
// memory. Such files are treated as having no embedded capture time.
var errCorruptEXIF = errors.New("corrupt EXIF structure")

// tiffTypeSizes mirrors the per-component sizes goexif uses for each TIFF
// data type. Unknown types are rejected by goexif itself.
var tiffTypeSizes = map[uint16]uint64{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1, 7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

// Sub-IFD pointer tags goexif follows after IFD0.
var subIFDPointerTags = map[uint16]bool{
	0x8769: true, // Exif
	0x8825: true, // GPS
	0xA005: true, // Interoperability
}

// maxIFDs bounds the number of directories walked in one file.
const maxIFDs = 64

// locateTIFF returns the TIFF block goexif would decode from data: the whole
// file for TIFF and raw EXIF input, otherwise the payload of the first JPEG
// APP1 section after its "Exif\0\0" header. ok is false when there is none.
func locateTIFF(data []byte) (tiffData []byte, ok bool) {
	if len(data) < 4 {
		return nil, false
	}
	switch string(data[:4]) {
	case "II*\x00", "MM\x00*":
		return data, true
	case "Exif":
		if len(data) < 6 || string(data[:6]) != "Exif\x00\x00" {
			return nil, false
		}
		return data[6:], true
	}

	// goexif scans for the first 0xFF 0xE1 pair with a non-empty length.
	for i := 0; i+1 < len(data); {
		j := bytes.IndexByte(data[i:], 0xFF)
		if j < 0 || i+j+1 >= len(data) {
			return nil, false
		}
		i += j + 1
		if data[i] != 0xE1 {
			i++
			continue
		}
		if i+2 >= len(data) {
			return nil, false
		}
		segLen := int(binary.BigEndian.Uint16(data[i+1:i+3])) - 2
		start := i + 3
		if segLen == 0 {
			i = start
			continue
		}
		if segLen < 6 || start+segLen > len(data) {
			return nil, false
		}
		seg := data[start : start+segLen]
		if string(seg[:6]) != "Exif\x00\x00" {
			return nil, false
		}
		return seg[6:], true
	}
	return nil, false
}

// checkTIFFBounds walks the IFD chain and the Exif, GPS and Interoperability
// sub-IFDs of a TIFF block and rejects the structures that make goexif
// allocate by an unchecked component count or loop forever: a tag whose
// byte size overflows uint32, and an IFD chain that revisits a directory.
// Plain truncation is left to goexif, which reports it as an error.
func checkTIFFBounds(data []byte) error {
	if len(data) < 8 {
		return nil
	}
	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil
	}

	visited := make(map[int64]bool)
	var subIFDs []int64

	offset := int64(int32(order.Uint32(data[4:8])))
	for offset != 0 {
		if visited[offset] {
			return errCorruptEXIF
		}
		if len(visited) >= maxIFDs {
			return errCorruptEXIF
		}
		visited[offset] = true

		next, pointers, err := checkIFD(data, offset, order)
		if err != nil {
			return err
		}
		subIFDs = append(subIFDs, pointers...)
		if next < 0 {
			break
		}
		offset = next
	}

	for i := 0; i < len(subIFDs) && i < maxIFDs; i++ {
		if visited[subIFDs[i]] {
			continue
		}
		visited[subIFDs[i]] = true
		_, pointers, err := checkIFD(data, subIFDs[i], order)
		if err != nil {
			return err
		}
		subIFDs = append(subIFDs, pointers...)
	}
	return nil
}

// checkIFD validates the directory at offset. next is the offset of the
// following directory, or -1 when the directory is truncated or out of
// range, which goexif rejects without allocating.
func checkIFD(data []byte, offset int64, order binary.ByteOrder) (next int64, pointers []int64, err error) {
	size := int64(len(data))
	if offset < 0 || offset+2 > size {
		return -1, nil, nil
	}
	nTags := int64(int16(order.Uint16(data[offset:])))
	pos := offset + 2
	for n := int64(0); n < nTags; n++ {
		if pos+12 > size {
			return -1, pointers, nil
		}
		entry := data[pos : pos+12]
		pos += 12

		id := order.Uint16(entry[0:])
		typ := order.Uint16(entry[2:])
		count := order.Uint32(entry[4:])
		typeSize, known := tiffTypeSizes[typ]
		if !known || count == math.MaxUint32 {
			// goexif stops decoding the directory here.
			return -1, pointers, nil
		}
		if uint64(count)*typeSize > math.MaxUint32 {
			return -1, nil, errCorruptEXIF
		}

		if subIFDPointerTags[id] && count >= 1 {
			switch typ {
			case 4, 9:
				pointers = append(pointers, int64(order.Uint32(entry[8:])))
			case 3, 8:
				pointers = append(pointers, int64(order.Uint16(entry[8:])))
			}
		}
	}
	if pos+4 > size {
		return -1, pointers, nil
	}
	return int64(int32(order.Uint32(data[pos:]))), pointers, nil
}
