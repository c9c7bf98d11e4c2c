package equipment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"equipment-inventory/feature/equipment/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WriteHook is called after every successful write with a short reason.
type WriteHook func(reason string)

// Service implements the equipment use cases over the local store.
type Service struct {
	store   *Store
	logger  *zap.Logger
	onWrite WriteHook
	lock    sync.Locker
	now     func() time.Time
}

// NewService creates a new equipment service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// OnWrite registers the hook called after successful writes.
func (s *Service) OnWrite(hook WriteHook) {
	s.onWrite = hook
}

// Guard makes every write hold l while it reads and changes the store.
// Hooks run after l is released.
func (s *Service) Guard(l sync.Locker) {
	s.lock = l
}

// List returns the records that are not deleted, filtered by query.
func (s *Service) List(ctx context.Context, query string) ([]*models.Equipment, error) {
	return s.store.Search(ctx, query)
}

// Get returns a record that is not deleted.
func (s *Service) Get(ctx context.Context, id string) (*models.Equipment, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.IsDeleted {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Save creates or updates a record and returns its id.
//
// All scalar fields are required. A record without id gets "eq_<unix millis>".
// updated_at is set to now, and never earlier than the stored value, so the
// edit wins the next synchronization. Deleted records cannot be edited.
func (s *Service) Save(ctx context.Context, input *models.Equipment) (string, error) {
	if missing := input.MissingFields(); len(missing) > 0 {
		return "", fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	now := models.NormalizeTime(s.now())
	record := &models.Equipment{
		ID:               strings.TrimSpace(input.ID),
		INE:              strings.TrimSpace(input.INE),
		NNE:              strings.TrimSpace(input.NNE),
		Serie:            strings.TrimSpace(input.Serie),
		Tipo:             strings.TrimSpace(input.Tipo),
		Estado:           strings.TrimSpace(input.Estado),
		Responsable:      strings.TrimSpace(input.Responsable),
		Ubicacion:        strings.TrimSpace(input.Ubicacion),
		CreatedAt:        now,
		UpdatedAt:        now,
		Especificaciones: models.NormalizeEspecificaciones(input.Especificaciones),
	}

	err := s.guarded(func() error {
		return s.save(ctx, record)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Equipment saved",
		zap.String("id", record.ID),
		zap.String("ine", record.INE),
		zap.Int("especificaciones", len(record.Especificaciones)),
	)
	s.notify("save")
	return record.ID, nil
}

func (s *Service) save(ctx context.Context, record *models.Equipment) error {
	now := record.UpdatedAt
	if record.ID == "" {
		id, err := s.newID(ctx, now)
		if err != nil {
			return err
		}
		record.ID = id
	} else {
		existing, err := s.store.Get(ctx, record.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			// client supplied id for a new record
		case err != nil:
			return err
		case existing.IsDeleted:
			return fmt.Errorf("%w: %s", ErrNotFound, record.ID)
		default:
			record.CreatedAt = existing.CreatedAt
			if !record.UpdatedAt.After(existing.UpdatedAt) {
				record.UpdatedAt = existing.UpdatedAt.Add(time.Microsecond)
			}
		}
	}

	return s.store.Save(ctx, record)
}

// Delete soft-deletes a record. It returns false when there was nothing to delete.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.guarded(func() error {
		at := models.NormalizeTime(s.now())
		if existing, err := s.store.Get(ctx, id); err == nil && !at.After(existing.UpdatedAt) {
			at = existing.UpdatedAt.Add(time.Microsecond)
		}

		var err error
		deleted, err = s.store.SoftDelete(ctx, id, at)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("Equipment deleted", zap.String("id", id))
		s.notify("delete")
	}
	return deleted, nil
}

// Driver returns the dialect of the local store, reported by the health check.
func (s *Service) Driver() string {
	return s.store.Driver()
}

// Ping checks the local store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// newID returns "eq_<unix millis>", or a random id when that one is taken.
func (s *Service) newID(ctx context.Context, now time.Time) (string, error) {
	id := "eq_" + strconv.FormatInt(now.UnixMilli(), 10)
	_, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return id, nil
	case err != nil:
		return "", err
	default:
		return "eq_" + uuid.NewString(), nil
	}
}

func (s *Service) guarded(fn func() error) error {
	if s.lock == nil {
		return fn()
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn()
}

func (s *Service) notify(reason string) {
	if s.onWrite != nil {
		s.onWrite(reason)
	}
}
