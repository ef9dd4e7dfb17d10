// Package archive implements the CMOD/CJMOD Module Archive format
// (spec.md §4.I): a bespoke, store-mode-only ZIP-family container (no
// deflate) with a CRC-32 per entry, a local file header per entry, and a
// central directory plus end-of-central-directory record at the end.
//
// Grounded on original_source/include/SimpleZip.h (SimpleZip, CmodPacker,
// CJmodPacker — signatures, header layout, and the store-only contract
// are taken directly from that header). This is one of the few
// components built on the standard library rather than a third-party
// package: no zip/archive library fits this bespoke store-mode-only
// format, so encoding/binary + hash/crc32 is the grounded choice — see
// DESIGN.md for the full justification.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sort"
	"time"
)

const (
	localFileHeaderSignature   uint32 = 0x04034b50
	centralDirHeaderSignature  uint32 = 0x02014b50
	endOfCentralDirSignature   uint32 = 0x06054b50
	storeMethod                uint16 = 0 // no compression, per spec.md §4.I
)

// Entry is one file stored in the archive.
type Entry struct {
	Name string
	Data []byte
}

// localHeader is the per-entry bookkeeping recorded while writing, so the
// central directory can point back at each local header's offset.
type localHeader struct {
	name   string
	crc32  uint32
	size   uint32
	offset uint32
	modTime, modDate uint16
}

// Pack serializes entries into a store-mode archive, matching
// SimpleZip::createZip (spec.md §4.I). Entries are written in the given
// order; callers that need deterministic output should sort first.
func Pack(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	var headers []localHeader

	modTime, modDate := dosTime(time.Time{})

	for _, e := range entries {
		offset := uint32(buf.Len())
		crc := crc32.ChecksumIEEE(e.Data)
		h := localHeader{name: e.Name, crc32: crc, size: uint32(len(e.Data)), offset: offset, modTime: modTime, modDate: modDate}
		headers = append(headers, h)

		writeUint32(&buf, localFileHeaderSignature)
		writeUint16(&buf, 20) // version needed to extract
		writeUint16(&buf, 0)  // general purpose flag
		writeUint16(&buf, storeMethod)
		writeUint16(&buf, modTime)
		writeUint16(&buf, modDate)
		writeUint32(&buf, crc)
		writeUint32(&buf, h.size)
		writeUint32(&buf, h.size) // uncompressed == compressed in store mode
		writeUint16(&buf, uint16(len(e.Name)))
		writeUint16(&buf, 0) // extra field length
		buf.WriteString(e.Name)
		buf.Write(e.Data)
	}

	centralStart := uint32(buf.Len())
	for _, h := range headers {
		writeUint32(&buf, centralDirHeaderSignature)
		writeUint16(&buf, 20) // version made by
		writeUint16(&buf, 20) // version needed to extract
		writeUint16(&buf, 0)  // general purpose flag
		writeUint16(&buf, storeMethod)
		writeUint16(&buf, h.modTime)
		writeUint16(&buf, h.modDate)
		writeUint32(&buf, h.crc32)
		writeUint32(&buf, h.size)
		writeUint32(&buf, h.size)
		writeUint16(&buf, uint16(len(h.name)))
		writeUint16(&buf, 0) // extra field length
		writeUint16(&buf, 0) // file comment length
		writeUint16(&buf, 0) // disk number start
		writeUint16(&buf, 0) // internal file attributes
		writeUint32(&buf, 0) // external file attributes
		writeUint32(&buf, h.offset)
		buf.WriteString(h.name)
	}
	centralSize := uint32(buf.Len()) - centralStart

	writeUint32(&buf, endOfCentralDirSignature)
	writeUint16(&buf, 0) // this disk number
	writeUint16(&buf, 0) // disk where central directory starts
	writeUint16(&buf, uint16(len(headers)))
	writeUint16(&buf, uint16(len(headers)))
	writeUint32(&buf, centralSize)
	writeUint32(&buf, centralStart)
	writeUint16(&buf, 0) // comment length

	return buf.Bytes(), nil
}

// Unpack reads a store-mode archive produced by Pack, verifying each
// entry's CRC-32 (spec.md §4.I invariant: "every extracted entry's CRC-32
// must match its header").
func Unpack(data []byte) ([]Entry, error) {
	if len(data) < 22 {
		return nil, fmt.Errorf("archive: too small to contain an end-of-central-directory record")
	}
	eocdOffset := bytes.LastIndex(data, leUint32Bytes(endOfCentralDirSignature))
	if eocdOffset < 0 {
		return nil, fmt.Errorf("archive: end-of-central-directory signature not found")
	}
	r := bytes.NewReader(data[eocdOffset+4:])
	var diskNo, cdDisk, entriesOnDisk, totalEntries uint16
	var cdSize, cdOffset uint32
	readUint16(r, &diskNo)
	readUint16(r, &cdDisk)
	readUint16(r, &entriesOnDisk)
	readUint16(r, &totalEntries)
	readUint32(r, &cdSize)
	readUint32(r, &cdOffset)

	var entries []Entry
	pos := int(cdOffset)
	for i := uint16(0); i < totalEntries; i++ {
		if pos+46 > len(data) {
			return nil, fmt.Errorf("archive: truncated central directory entry %d", i)
		}
		sig := binary.LittleEndian.Uint32(data[pos:])
		if sig != centralDirHeaderSignature {
			return nil, fmt.Errorf("archive: bad central directory signature at entry %d", i)
		}
		method := binary.LittleEndian.Uint16(data[pos+10:])
		crc := binary.LittleEndian.Uint32(data[pos+16:])
		size := binary.LittleEndian.Uint32(data[pos+20:])
		nameLen := binary.LittleEndian.Uint16(data[pos+28:])
		extraLen := binary.LittleEndian.Uint16(data[pos+30:])
		commentLen := binary.LittleEndian.Uint16(data[pos+32:])
		localOffset := binary.LittleEndian.Uint32(data[pos+42:])
		nameStart := pos + 46
		name := string(data[nameStart : nameStart+int(nameLen)])
		pos = nameStart + int(nameLen) + int(extraLen) + int(commentLen)

		if method != storeMethod {
			return nil, fmt.Errorf("archive: entry %q uses an unsupported compression method %d (store-only format)", name, method)
		}

		content, err := readLocalEntry(data, int(localOffset), int(size))
		if err != nil {
			return nil, err
		}
		if got := crc32.ChecksumIEEE(content); got != crc {
			return nil, fmt.Errorf("archive: CRC-32 mismatch for %q: header says %08x, computed %08x", name, crc, got)
		}
		entries = append(entries, Entry{Name: name, Data: content})
	}
	return entries, nil
}

func readLocalEntry(data []byte, offset, size int) ([]byte, error) {
	if offset+30 > len(data) {
		return nil, fmt.Errorf("archive: local file header out of range at offset %d", offset)
	}
	if binary.LittleEndian.Uint32(data[offset:]) != localFileHeaderSignature {
		return nil, fmt.Errorf("archive: bad local file header signature at offset %d", offset)
	}
	nameLen := binary.LittleEndian.Uint16(data[offset+26:])
	extraLen := binary.LittleEndian.Uint16(data[offset+28:])
	dataStart := offset + 30 + int(nameLen) + int(extraLen)
	if dataStart+size > len(data) {
		return nil, fmt.Errorf("archive: entry data out of range")
	}
	return data[dataStart : dataStart+size], nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint16(r *bytes.Reader, out *uint16) { binary.Read(r, binary.LittleEndian, out) }
func readUint32(r *bytes.Reader, out *uint32) { binary.Read(r, binary.LittleEndian, out) }

func leUint32Bytes(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// dosTime converts t to MS-DOS packed time/date, matching the field
// layout SimpleZip writes for every entry. The zero time.Time maps to
// the DOS epoch (1980-01-01), used for reproducible archive bytes.
func dosTime(t time.Time) (uint16, uint16) {
	if t.IsZero() {
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	mt := uint16(t.Second()/2) | uint16(t.Minute())<<5 | uint16(t.Hour())<<11
	md := uint16(t.Day()) | uint16(t.Month())<<5 | uint16(t.Year()-1980)<<9
	return mt, md
}

// SortEntries orders entries by name for reproducible archive bytes
// across packing runs.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}
