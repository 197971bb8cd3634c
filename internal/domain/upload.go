package domain

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

const (
	// UploadField is the multipart field carrying the audio clip.
	UploadField = "file"

	DefaultAudioExtension = ".wav"

	msgWrongFormat  = "Use multipart/form-data with a 'file' field."
	msgMissingField = "Missing 'file' (audio/wav) in form-data."
)

var allowedAudioTypes = map[string]struct{}{
	"audio/wav":   {},
	"audio/wave":  {},
	"audio/x-wav": {},
	"audio/mpeg":  {},
	"audio/webm":  {},
	"audio/ogg":   {},
	"audio/mp4":   {},
	"audio/x-m4a": {},
}

// Upload is an audio clip received with a single request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Extension returns the extension of the uploaded filename, or
// DefaultAudioExtension when it has none.
func (u Upload) Extension() string {
	if ext := filepath.Ext(filepath.Base(u.Filename)); ext != "" && ext != "." {
		return ext
	}
	return DefaultAudioExtension
}

type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldText
	FieldFile
)

func (k FieldKind) String() string {
	switch k {
	case FieldAbsent:
		return "absent"
	case FieldText:
		return "text"
	case FieldFile:
		return "file"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// FormField is one named field of a parsed multipart form. Text is set for
// FieldText, File for FieldFile.
type FormField struct {
	Kind FieldKind
	Text string
	File *Upload
}

// RequireMultipart checks that a request Content-Type announces multipart
// form data.
func RequireMultipart(contentType string) error {
	if !strings.Contains(strings.ToLower(contentType), "multipart/form-data") {
		return NewError(KindInvalid, msgWrongFormat)
	}
	return nil
}

// MalformedForm reports a multipart body that could not be parsed.
func MalformedForm(err error) error {
	return WrapError(KindInvalid, msgWrongFormat, err)
}

// RequireFile accepts only a binary file field.
func RequireFile(field FormField) (Upload, error) {
	switch field.Kind {
	case FieldFile:
		if field.File != nil {
			return *field.File, nil
		}
		return Upload{}, NewError(KindInvalid, msgMissingField)
	case FieldText, FieldAbsent:
		return Upload{}, NewError(KindInvalid, msgMissingField)
	default:
		return Upload{}, NewError(KindInvalid, msgMissingField)
	}
}

// CheckAudioType rejects declared media types outside the audio allow-list.
// An empty type passes; the provider rejects genuinely invalid audio.
func CheckAudioType(contentType string) error {
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	if _, ok := allowedAudioTypes[strings.ToLower(mediaType)]; ok {
		return nil
	}
	return NewError(KindUnsupportedMedia, fmt.Sprintf("Unsupported content-type: %s.", contentType))
}
