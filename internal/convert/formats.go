package convert

import (
	"sort"
	"strconv"

	"wsexport/internal/services"
)

// Format describes one output format of the converter.
type Format struct {
	Key       string
	Extension string
	MimeType  string
	Params    string
}

const pageBreaks = "--page-breaks-before /"

func pdfParams(paper string, bottom, top, left, right int) string {
	return pageBreaks +
		" --paper-size " + paper +
		" --margin-bottom " + strconv.Itoa(bottom) +
		" --margin-top " + strconv.Itoa(top) +
		" --margin-left " + strconv.Itoa(left) +
		" --margin-right " + strconv.Itoa(right) +
		" --pdf-page-numbers --preserve-cover-aspect-ratio"
}

var registry = map[string]Format{
	"htmlz":      {Key: "htmlz", Extension: "htmlz", MimeType: "application/zip", Params: pageBreaks},
	"mobi":       {Key: "mobi", Extension: "mobi", MimeType: "application/x-mobipocket-ebook", Params: pageBreaks},
	"pdf-a4":     {Key: "pdf-a4", Extension: "pdf", MimeType: "application/pdf", Params: pdfParams("a4", 48, 60, 36, 36)},
	"pdf-a5":     {Key: "pdf-a5", Extension: "pdf", MimeType: "application/pdf", Params: pdfParams("a5", 32, 40, 24, 24)},
	"pdf-a6":     {Key: "pdf-a6", Extension: "pdf", MimeType: "application/pdf", Params: pdfParams("a6", 16, 20, 12, 12)},
	"pdf-letter": {Key: "pdf-letter", Extension: "pdf", MimeType: "application/pdf", Params: pdfParams("letter", 48, 60, 36, 36)},
	"rtf":        {Key: "rtf", Extension: "rtf", MimeType: "application/rtf", Params: pageBreaks},
	"txt":        {Key: "txt", Extension: "txt", MimeType: "text/plain", Params: pageBreaks},
}

// SelectFormat looks up key in the registry.
func SelectFormat(key string) (Format, error) {
	format, ok := registry[key]
	if !ok {
		return Format{}, &services.InvalidFormatError{Key: key}
	}
	return format, nil
}

// GetExtension returns the file extension for key.
func GetExtension(key string) (string, error) {
	format, err := SelectFormat(key)
	return format.Extension, err
}

// GetMimeType returns the MIME type for key.
func GetMimeType(key string) (string, error) {
	format, err := SelectFormat(key)
	return format.MimeType, err
}

// SupportedFormats lists the registry sorted by key.
func SupportedFormats() []Format {
	formats := make([]Format, 0, len(registry))
	for _, format := range registry {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i].Key < formats[j].Key })
	return formats
}
