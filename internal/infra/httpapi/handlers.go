package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"shopping-list/internal/domain"
)

const (
	msgGetItemsFailed   = "Failed to get items"
	msgTranscribeFailed = "Transcription failed"
	msgRemoveFailed     = "Failed to remove item"
	msgInvalidJSON      = "Invalid JSON body."
	msgStoreUnavailable = "list store unavailable"
)

var demoItems = []string{
	"Karotten",
	"Knoblauch",
	"Zwiebeln",
	"Joghurt",
	"Hafermilch",
	"Käse",
	"Tomaten",
	"Paprika",
	"Klopapier",
	"Spüli",
}

type itemsResponse struct {
	Items []string `json:"items"`
}

type addedResponse struct {
	Added string   `json:"added"`
	Items []string `json:"items"`
}

type removedResponse struct {
	Removed string   `json:"removed"`
	Items   []string `json:"items"`
}

type transcriptResponse struct {
	Text string `json:"text"`
}

type removeRequest struct {
	Item string `json:"item"`
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleDemo(c *fiber.Ctx) error {
	return c.JSON(itemsResponse{Items: demoItems})
}

func (s *Server) handleEcho(c *fiber.Ctx) error {
	var body any
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return domain.WrapError(domain.KindInvalid, msgInvalidJSON, err)
	}
	return c.JSON(fiber.Map{"res": body})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.health.Ping(c.UserContext()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{
			Status: "unavailable",
			Error:  msgStoreUnavailable,
		})
	}
	return c.JSON(healthResponse{Status: "ok"})
}

func (s *Server) handleListItems(c *fiber.Ctx) error {
	items, err := s.svc.Items(c.UserContext())
	if err != nil {
		return fail(err, msgGetItemsFailed)
	}
	return c.JSON(itemsResponse{Items: items})
}

// handleAddItem answers {added, items}. added is empty when the transcript
// held nothing but whitespace and punctuation; the list is then unchanged.
func (s *Server) handleAddItem(c *fiber.Ctx) error {
	upload, err := readUpload(c)
	if err != nil {
		return fail(err, msgTranscribeFailed)
	}

	added, items, err := s.svc.AddFromAudio(c.UserContext(), upload)
	if err != nil {
		return fail(err, msgTranscribeFailed)
	}
	return c.JSON(addedResponse{Added: added, Items: items})
}

func (s *Server) handleRemoveItem(c *fiber.Ctx) error {
	var req removeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return domain.WrapError(domain.KindInvalid, msgInvalidJSON, err)
	}

	items, err := s.svc.Remove(c.UserContext(), req.Item)
	if err != nil {
		return fail(err, msgRemoveFailed)
	}
	return c.JSON(removedResponse{Removed: req.Item, Items: items})
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	upload, err := readUpload(c)
	if err != nil {
		return fail(err, msgTranscribeFailed)
	}

	text, err := s.svc.Transcribe(c.UserContext(), upload)
	if err != nil {
		return fail(err, msgTranscribeFailed)
	}
	return c.JSON(transcriptResponse{Text: text})
}

// readUpload validates a multipart request and extracts the audio clip. The
// checks run in order: multipart content type, a binary 'file' field, then
// the declared audio type.
func readUpload(c *fiber.Ctx) (domain.Upload, error) {
	if err := domain.RequireMultipart(c.Get(fiber.HeaderContentType)); err != nil {
		return domain.Upload{}, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return domain.Upload{}, domain.MalformedForm(err)
	}

	field, err := formField(form, domain.UploadField)
	if err != nil {
		return domain.Upload{}, err
	}

	upload, err := domain.RequireFile(field)
	if err != nil {
		return domain.Upload{}, err
	}

	if err := domain.CheckAudioType(upload.ContentType); err != nil {
		return domain.Upload{}, err
	}
	return upload, nil
}

func formField(form *multipart.Form, name string) (domain.FormField, error) {
	if files := form.File[name]; len(files) > 0 {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return domain.FormField{}, fmt.Errorf("opening form file: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return domain.FormField{}, fmt.Errorf("reading form file: %w", err)
		}
		return domain.FormField{
			Kind: domain.FieldFile,
			File: &domain.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(fiber.HeaderContentType),
				Data:        data,
			},
		}, nil
	}

	if values := form.Value[name]; len(values) > 0 {
		return domain.FormField{Kind: domain.FieldText, Text: values[0]}, nil
	}
	return domain.FormField{Kind: domain.FieldAbsent}, nil
}
