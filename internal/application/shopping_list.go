package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shopping-list/internal/domain"
)

// ShoppingList turns dictated audio into list items. Every method returns
// either a value or a *domain.Error tagged with the failing stage.
type ShoppingList struct {
	stt      SpeechToText
	store    ListStore
	archive  UploadArchive
	notifier Notifier
	logger   *slog.Logger
}

func NewShoppingList(
	stt SpeechToText,
	store ListStore,
	archive UploadArchive,
	notifier Notifier,
	logger *slog.Logger,
) *ShoppingList {
	return &ShoppingList{
		stt:      stt,
		store:    store,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
	}
}

// Transcribe returns the provider's text unchanged. The list is not touched.
func (s *ShoppingList) Transcribe(ctx context.Context, upload domain.Upload) (string, error) {
	s.logger.Info("transcribing upload",
		"filename", upload.Filename,
		"content_type", upload.ContentType,
		"bytes", len(upload.Data),
	)

	text, err := s.stt.Transcribe(ctx, upload)
	if err != nil {
		return "", upstream(err)
	}
	return text, nil
}

// AddFromAudio transcribes the upload, pushes the normalized text onto the
// head of the list and returns it together with the list as read back from
// the store. A transcript that normalizes to "" is not appended; added is
// then empty and items is the unchanged list.
func (s *ShoppingList) AddFromAudio(ctx context.Context, upload domain.Upload) (string, []string, error) {
	path, err := s.archive.Save(ctx, upload)
	if err != nil {
		return "", nil, upstream(fmt.Errorf("capturing upload: %w", err))
	}
	if path != "" {
		s.logger.Debug("captured upload", "path", path)
	}

	text, err := s.Transcribe(ctx, upload)
	if err != nil {
		return "", nil, err
	}

	added := domain.NormalizeItem(text)
	s.logger.Info("transcribed", "text", text, "item", added)

	if added == "" {
		s.logger.Warn("transcript is empty after normalization, nothing appended")
	} else {
		if err := s.store.Append(ctx, added); err != nil {
			return "", nil, upstream(err)
		}
		s.notify(ctx, fmt.Sprintf("Added to shopping list: %s", added))
	}

	items, err := s.store.All(ctx)
	if err != nil {
		return "", nil, upstream(err)
	}
	return added, items, nil
}

func (s *ShoppingList) Items(ctx context.Context) ([]string, error) {
	items, err := s.store.All(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return items, nil
}

// Remove deletes the first occurrence of item and returns the remaining list.
// Removing an item that is not on the list is not an error.
func (s *ShoppingList) Remove(ctx context.Context, item string) ([]string, error) {
	if strings.TrimSpace(item) == "" {
		return nil, domain.NewError(domain.KindInvalid, "Missing 'item' in request body.")
	}

	if err := s.store.Remove(ctx, item); err != nil {
		return nil, upstream(err)
	}
	s.logger.Info("removed item", "item", item)

	return s.Items(ctx)
}

func (s *ShoppingList) notify(ctx context.Context, message string) {
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.logger.Error("notifying", "error", err)
	}
}

// upstream tags err as an upstream failure unless a stage already classified
// it.
func upstream(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.WrapError(domain.KindUpstream, "", err)
}
