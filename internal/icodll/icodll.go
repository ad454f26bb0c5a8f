// Package icodll builds a minimal resource-only DLL embedding one icon.
//
// Windows Installer requires shortcut and product icons to live inside an
// EXE or DLL, so the bare .ico supplied on the command line is wrapped in
// the smallest loadable container: a PE image with a single .rsrc section
// holding the RT_ICON images and one RT_GROUP_ICON directory. The DLL has
// no code and no entry point; it only exists to be read as a datafile.
package icodll

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	fileAlign    = 0x200
	sectionAlign = 0x1000
	rsrcRVA      = 0x1000
	imageBase    = 0x10000000

	rtIcon      = 3
	rtGroupIcon = 14
	langNeutral = 0
)

// iconImage is one image extracted from the .ico container.
type iconImage struct {
	width      uint8
	height     uint8
	colorCount uint8
	planes     uint16
	bitCount   uint16
	data       []byte
}

// Convert wraps the icon at icoPath into a resource DLL at dllPath.
func Convert(icoPath, dllPath string) error {
	raw, err := os.ReadFile(icoPath)
	if err != nil {
		return fmt.Errorf("reading icon: %w", err)
	}

	images, err := parseIco(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", icoPath, err)
	}

	rsrc := buildResourceSection(images)
	dll := buildImage(rsrc)

	if err := os.WriteFile(dllPath, dll, 0644); err != nil {
		return fmt.Errorf("writing icon library: %w", err)
	}
	return nil
}

// parseIco splits an ICONDIR container into its images.
func parseIco(raw []byte) ([]iconImage, error) {
	if len(raw) < 6 {
		return nil, fmt.Errorf("file too short for an icon header")
	}
	reserved := binary.LittleEndian.Uint16(raw[0:2])
	icoType := binary.LittleEndian.Uint16(raw[2:4])
	count := int(binary.LittleEndian.Uint16(raw[4:6]))
	if reserved != 0 || icoType != 1 {
		return nil, fmt.Errorf("not an icon file (type=%d)", icoType)
	}
	if count == 0 {
		return nil, fmt.Errorf("icon file contains no images")
	}
	if len(raw) < 6+16*count {
		return nil, fmt.Errorf("truncated icon directory")
	}

	images := make([]iconImage, 0, count)
	for i := 0; i < count; i++ {
		entry := raw[6+16*i : 6+16*(i+1)]
		size := binary.LittleEndian.Uint32(entry[8:12])
		offset := binary.LittleEndian.Uint32(entry[12:16])
		if uint64(offset)+uint64(size) > uint64(len(raw)) {
			return nil, fmt.Errorf("icon image %d extends past end of file", i+1)
		}
		images = append(images, iconImage{
			width:      entry[0],
			height:     entry[1],
			colorCount: entry[2],
			planes:     binary.LittleEndian.Uint16(entry[4:6]),
			bitCount:   binary.LittleEndian.Uint16(entry[6:8]),
			data:       raw[offset : offset+size],
		})
	}
	return images, nil
}

// buildGroupData serializes the RT_GROUP_ICON payload: an ICONDIR header
// whose entries reference RT_ICON resources by id instead of file offset.
func buildGroupData(images []iconImage) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(&buf, binary.LittleEndian, uint16(len(images)))
	for i, img := range images {
		buf.WriteByte(img.width)
		buf.WriteByte(img.height)
		buf.WriteByte(img.colorCount)
		buf.WriteByte(0)
		binary.Write(&buf, binary.LittleEndian, img.planes)
		binary.Write(&buf, binary.LittleEndian, img.bitCount)
		binary.Write(&buf, binary.LittleEndian, uint32(len(img.data)))
		binary.Write(&buf, binary.LittleEndian, uint16(i+1)) // resource id
	}
	return buf.Bytes()
}

// buildResourceSection lays out the .rsrc directory tree:
//
//	root -> RT_ICON -> id 1..n -> lang -> data
//	     -> RT_GROUP_ICON -> id 1 -> lang -> data
func buildResourceSection(images []iconImage) []byte {
	n := len(images)
	group := buildGroupData(images)

	const dirHeader = 16
	const dirEntry = 8
	const dataEntry = 16

	rootOff := 0
	iconDirOff := rootOff + dirHeader + 2*dirEntry
	groupDirOff := iconDirOff + dirHeader + n*dirEntry
	langDirsOff := groupDirOff + dirHeader + 1*dirEntry
	langDirSize := dirHeader + dirEntry
	dataEntriesOff := langDirsOff + (n+1)*langDirSize
	blobsOff := align(dataEntriesOff+(n+1)*dataEntry, 4)

	// Blob layout: icon images in id order, then the group directory.
	blobOffsets := make([]int, n+1)
	off := blobsOff
	for i, img := range images {
		blobOffsets[i] = off
		off = align(off+len(img.data), 4)
	}
	blobOffsets[n] = off
	total := off + len(group)

	buf := make([]byte, total)
	le := binary.LittleEndian

	writeDir := func(off, numIDs int) {
		le.PutUint16(buf[off+14:], uint16(numIDs))
	}
	writeEntry := func(off int, id uint32, target uint32, subdir bool) {
		le.PutUint32(buf[off:], id)
		if subdir {
			target |= 0x80000000
		}
		le.PutUint32(buf[off+4:], target)
	}

	// Root: the two type entries, sorted by id.
	writeDir(rootOff, 2)
	writeEntry(rootOff+dirHeader, rtIcon, uint32(iconDirOff), true)
	writeEntry(rootOff+dirHeader+dirEntry, rtGroupIcon, uint32(groupDirOff), true)

	// Type directories.
	writeDir(iconDirOff, n)
	for i := 0; i < n; i++ {
		langOff := langDirsOff + i*langDirSize
		writeEntry(iconDirOff+dirHeader+i*dirEntry, uint32(i+1), uint32(langOff), true)
	}
	writeDir(groupDirOff, 1)
	groupLangOff := langDirsOff + n*langDirSize
	writeEntry(groupDirOff+dirHeader, 1, uint32(groupLangOff), true)

	// Language directories and data entries.
	for i := 0; i <= n; i++ {
		langOff := langDirsOff + i*langDirSize
		entryOff := dataEntriesOff + i*dataEntry
		writeDir(langOff, 1)
		writeEntry(langOff+dirHeader, langNeutral, uint32(entryOff), false)

		var blob []byte
		if i < n {
			blob = images[i].data
		} else {
			blob = group
		}
		le.PutUint32(buf[entryOff:], uint32(rsrcRVA+blobOffsets[i]))
		le.PutUint32(buf[entryOff+4:], uint32(len(blob)))
		copy(buf[blobOffsets[i]:], blob)
	}

	return buf
}

// buildImage wraps the resource section in a minimal PE32 DLL image.
func buildImage(rsrc []byte) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian

	headerSize := 64 + 4 + 20 + 224 + 40 // DOS + signature + COFF + optional + 1 section
	sizeOfHeaders := align(headerSize, fileAlign)
	rawSize := align(len(rsrc), fileAlign)
	sizeOfImage := sectionAlign + align(len(rsrc), sectionAlign)

	// DOS header: only the magic and the PE offset matter, no stub.
	dos := make([]byte, 64)
	copy(dos, "MZ")
	le.PutUint32(dos[0x3c:], 64)
	buf.Write(dos)

	buf.WriteString("PE\x00\x00")

	// COFF header: i386, one section, DLL | 32BIT | EXECUTABLE_IMAGE.
	binary.Write(&buf, le, uint16(0x014c))
	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, uint32(0)) // timestamp
	binary.Write(&buf, le, uint32(0)) // symbol table
	binary.Write(&buf, le, uint32(0)) // symbol count
	binary.Write(&buf, le, uint16(224))
	binary.Write(&buf, le, uint16(0x2102))

	// Optional header (PE32).
	binary.Write(&buf, le, uint16(0x010b))
	buf.Write([]byte{0, 0})            // linker version
	binary.Write(&buf, le, uint32(0))  // size of code
	binary.Write(&buf, le, uint32(0))  // size of initialized data
	binary.Write(&buf, le, uint32(0))  // size of uninitialized data
	binary.Write(&buf, le, uint32(0))  // entry point
	binary.Write(&buf, le, uint32(0))  // base of code
	binary.Write(&buf, le, uint32(0))  // base of data
	binary.Write(&buf, le, uint32(imageBase))
	binary.Write(&buf, le, uint32(sectionAlign))
	binary.Write(&buf, le, uint32(fileAlign))
	binary.Write(&buf, le, uint16(4)) // OS version 4.0
	binary.Write(&buf, le, uint16(0))
	binary.Write(&buf, le, uint16(0)) // image version
	binary.Write(&buf, le, uint16(0))
	binary.Write(&buf, le, uint16(4)) // subsystem version 4.0
	binary.Write(&buf, le, uint16(0))
	binary.Write(&buf, le, uint32(0)) // win32 version
	binary.Write(&buf, le, uint32(sizeOfImage))
	binary.Write(&buf, le, uint32(sizeOfHeaders))
	binary.Write(&buf, le, uint32(0)) // checksum
	binary.Write(&buf, le, uint16(2)) // subsystem: GUI
	binary.Write(&buf, le, uint16(0)) // dll characteristics
	binary.Write(&buf, le, uint32(0x100000))
	binary.Write(&buf, le, uint32(0x1000))
	binary.Write(&buf, le, uint32(0x100000))
	binary.Write(&buf, le, uint32(0x1000))
	binary.Write(&buf, le, uint32(0))  // loader flags
	binary.Write(&buf, le, uint32(16)) // number of data directories
	for i := 0; i < 16; i++ {
		if i == 2 { // resource directory
			binary.Write(&buf, le, uint32(rsrcRVA))
			binary.Write(&buf, le, uint32(len(rsrc)))
		} else {
			binary.Write(&buf, le, uint64(0))
		}
	}

	// Section table: the single .rsrc section.
	name := make([]byte, 8)
	copy(name, ".rsrc")
	buf.Write(name)
	binary.Write(&buf, le, uint32(len(rsrc)))
	binary.Write(&buf, le, uint32(rsrcRVA))
	binary.Write(&buf, le, uint32(rawSize))
	binary.Write(&buf, le, uint32(sizeOfHeaders))
	binary.Write(&buf, le, uint32(0)) // relocations
	binary.Write(&buf, le, uint32(0)) // line numbers
	binary.Write(&buf, le, uint32(0)) // counts
	binary.Write(&buf, le, uint32(0x40000040)) // initialized data, readable

	buf.Write(make([]byte, sizeOfHeaders-buf.Len()))
	buf.Write(rsrc)
	buf.Write(make([]byte, rawSize-len(rsrc)))

	return buf.Bytes()
}

func align(n, to int) int {
	return (n + to - 1) / to * to
}
