package simplecms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Translation store. The single-active-translation invariant is kept by an
// explicit two-step transition inside one transaction: deactivate every row
// for the (entity, lang) pair, then insert the new row active. Create is
// the only mutator of activity status.

// GetActiveTranslation returns the active translation for an entity and
// language, or nil when the pair has never been translated.
func (s *service) GetActiveTranslation(ctx context.Context, entityID uuid.UUID, langCode string) (*Translation, error) {
	translation, err := s.repository.GetActiveTranslation(ctx, entityID, langCode)
	if errors.Is(err, ErrTranslationNotFound) {
		return nil, nil
	}
	return translation, err
}

// GetTranslationByID returns a translation regardless of active state, or
// nil when absent.
func (s *service) GetTranslationByID(ctx context.Context, id uuid.UUID) (*Translation, error) {
	translation, err := s.repository.GetTranslation(ctx, id)
	if errors.Is(err, ErrTranslationNotFound) {
		return nil, nil
	}
	return translation, err
}

// CreateTranslation creates a new active translation for an entity,
// superseding any previous translation for the same language.
func (s *service) CreateTranslation(ctx context.Context, req CreateTranslationRequest) (*Translation, error) {
	if err := validateTranslationPayload(req.Payload); err != nil {
		return nil, err
	}
	if _, err := s.repository.GetEntity(ctx, req.EntityID, false); err != nil {
		return nil, &EntityError{EntityID: req.EntityID, Op: "create_translation", Err: err}
	}

	var translation *Translation
	err := s.repository.WithTx(ctx, func(tx Repository) error {
		var err error
		translation, err = createActiveTranslation(ctx, tx, req.EntityID, req.Payload)
		return err
	})
	if err != nil {
		return nil, txError("create_translation", err)
	}
	return translation, nil
}

// DeleteTranslation removes an inactive translation row. An active
// translation must be superseded by a new CreateTranslation first.
func (s *service) DeleteTranslation(ctx context.Context, id uuid.UUID) error {
	translation, err := s.repository.GetTranslation(ctx, id)
	if err != nil {
		return err
	}
	if translation.IsActive {
		return NewValidationError("translation", "an active translation cannot be deleted")
	}

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		return tx.DeleteTranslation(ctx, translation.ID)
	})
	return txError("delete_translation", err)
}

// createActiveTranslation performs the invariant-preserving state
// transition inside an already-open unit of work.
func createActiveTranslation(ctx context.Context, tx Repository, entityID uuid.UUID, payload TranslationPayload) (*Translation, error) {
	if err := tx.DeactivateTranslations(ctx, entityID, payload.LangCode); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	translation := &Translation{
		ID:        uuid.New(),
		EntityID:  entityID,
		LangCode:  payload.LangCode,
		IsActive:  true,
		Title:     payload.Title,
		URL:       payload.URL,
		Body:      payload.Body,
		Excerpt:   payload.Excerpt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.CreateTranslation(ctx, translation); err != nil {
		return nil, err
	}
	return translation, nil
}

func validateTranslationPayload(payload TranslationPayload) error {
	if payload.LangCode == "" {
		return NewValidationError("lang_code", "language code is required")
	}
	if payload.Title == "" {
		return NewValidationError("title", "title is required")
	}
	return nil
}
