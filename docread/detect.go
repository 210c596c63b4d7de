package docread

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// DetectExtension sniffs the format of raw document bytes and returns
// the matching file extension without the dot, or "". ZIP containers
// are told apart by their member layout (word/, xl/, ppt/).
func DetectExtension(data []byte) string {
	switch {
	case len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF")):
		return "pdf"
	case len(data) >= 4 && bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return zipExtension(data)
	}
	if ext := imageExtension(data); ext != "" {
		return ext
	}
	if looksLikeHTML(data) {
		return "html"
	}
	if looksLikeText(data) {
		return "txt"
	}
	return ""
}

// zipExtension distinguishes the ZIP-based document formats: Office
// Open XML by the part prefixes inside the archive, OpenDocument and
// EPUB by the mimetype member.
func zipExtension(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return "docx"
		case strings.HasPrefix(f.Name, "xl/"):
			return "xlsx"
		case strings.HasPrefix(f.Name, "ppt/"):
			return "pptx"
		case f.Name == "mimetype":
			if ext := mimetypeExtension(f); ext != "" {
				return ext
			}
		}
	}
	return ""
}

func mimetypeExtension(f *zip.File) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	mt, err := io.ReadAll(io.LimitReader(rc, 128))
	if err != nil {
		return ""
	}
	switch strings.TrimSpace(string(mt)) {
	case "application/vnd.oasis.opendocument.text":
		return "odt"
	case "application/epub+zip":
		return "epub"
	}
	return ""
}

// imageExtension recognizes the raster formats the picture pool
// accepts.
func imageExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "jpg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	}
	return ""
}

// looksLikeHTML checks the content's first bytes for an HTML document
// signature, case-insensitively and ignoring leading whitespace.
func looksLikeHTML(data []byte) bool {
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	upper := strings.ToUpper(strings.TrimLeft(string(sample), " \t\r\n"))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") {
		return true
	}
	return strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML")
}

// looksLikeText accepts UTF-8 content, with or without a BOM, and
// UTF-16 content carrying a byte order mark.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.HasPrefix(data, []byte("\xfe\xff")) || bytes.HasPrefix(data, []byte("\xff\xfe")) {
		return true
	}
	sample := data
	if len(sample) > 512 {
		// Cut on a rune boundary so a split sequence does not fail
		// validation.
		cut := 512
		for cut > 508 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	return utf8.Valid(sample)
}
