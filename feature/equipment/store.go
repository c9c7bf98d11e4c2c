package equipment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"equipment-inventory/core/database"
	"equipment-inventory/core/utils"
	"equipment-inventory/feature/equipment/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	equiposTable = "equipos"
	specsTable   = "especificaciones"
)

// upsertColumns are overwritten when the record already exists. created_at is insert-only.
var upsertColumns = []string{
	"ine", "nne", "serie", "tipo", "estado", "responsable", "ubicacion", "is_deleted", "updated_at",
}

// legacyColumns were added to 'equipos' after the first release.
var legacyColumns = []string{"is_deleted", "created_at", "updated_at"}

// Store reads and writes equipment records in one database.
// The same implementation serves the local and the remote store; all dialect
// differences stay inside gorm.
type Store struct {
	db   *gorm.DB
	name string
}

// NewStore creates a store over db. name identifies it in errors and logs ("local", "remote").
func NewStore(db *gorm.DB, name string) *Store {
	return &Store{db: db, name: name}
}

// Name returns the store name.
func (s *Store) Name() string {
	return s.name
}

// Driver returns the gorm dialect of the underlying database.
func (s *Store) Driver() string {
	return s.db.Dialector.Name()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ReadAll returns every record, soft-deleted ones included, ordered by id.
// Rows are read leniently: a missing or unparseable updated_at becomes the zero time.
// Specification rows without a parent record are ignored.
func (s *Store) ReadAll(ctx context.Context) ([]*models.Equipment, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(equiposTable).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read %s equipos: %w", s.name, err)
	}

	list := fromRows(rows)
	if err := s.attachSpecs(ctx, list, false); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns one record, soft-deleted or not.
func (s *Store) Get(ctx context.Context, id string) (*models.Equipment, error) {
	var rows []map[string]any
	err := s.db.WithContext(ctx).Table(equiposTable).Where("id = ?", id).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read equipo %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	list := fromRows(rows)
	if err := s.attachSpecs(ctx, list, true); err != nil {
		return nil, err
	}
	return list[0], nil
}

// Search returns the records that are not deleted, ordered by INE. A non-empty
// query keeps the records where any scalar field or any specification key or
// value contains it, case-insensitively.
func (s *Store) Search(ctx context.Context, query string) ([]*models.Equipment, error) {
	tx := s.db.WithContext(ctx).Table(equiposTable).
		Where("(is_deleted IS NULL OR is_deleted = ?)", false)

	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(`(LOWER(ine) LIKE ? OR LOWER(nne) LIKE ? OR LOWER(serie) LIKE ?
			OR LOWER(tipo) LIKE ? OR LOWER(estado) LIKE ? OR LOWER(responsable) LIKE ?
			OR LOWER(ubicacion) LIKE ?
			OR id IN (SELECT equipo_id FROM especificaciones WHERE LOWER(clave) LIKE ? OR LOWER(valor) LIKE ?))`,
			like, like, like, like, like, like, like, like, like)
	}

	var rows []map[string]any
	if err := tx.Order("ine").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search equipos: %w", err)
	}

	list := fromRows(rows)
	if err := s.attachSpecs(ctx, list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// Count returns the number of rows, soft-deleted ones included.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(equiposTable).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s equipos: %w", s.name, err)
	}
	return n, nil
}

// Upsert inserts the record or overwrites its mutable fields, is_deleted and updated_at.
// created_at is only written on insert; when the record carries none, updated_at
// (or the current time) is used.
func (s *Store) Upsert(ctx context.Context, e *models.Equipment) error {
	return upsert(s.db.WithContext(ctx), e)
}

// ReplaceSpecifications deletes every specification of id and inserts specs.
// Entries with an empty key or value are dropped.
func (s *Store) ReplaceSpecifications(ctx context.Context, id string, specs []models.Especificacion) error {
	return replaceSpecs(s.db.WithContext(ctx), id, specs)
}

// Save writes the record and its specifications in one transaction.
func (s *Store) Save(ctx context.Context, e *models.Equipment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, e); err != nil {
			return err
		}
		return replaceSpecs(tx, e.ID, e.Especificaciones)
	})
	if err != nil {
		return fmt.Errorf("failed to save equipo %s to %s: %w", e.ID, s.name, err)
	}
	return nil
}

// SoftDelete marks the record deleted at the given time.
// It returns false when the record does not exist or is already deleted.
func (s *Store) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.EquipoRow{}).
		Where("id = ? AND (is_deleted IS NULL OR is_deleted = ?)", id, false).
		Updates(map[string]any{
			"is_deleted": true,
			"updated_at": models.NormalizeTime(at),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete equipo %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID physically removes the record and its specifications.
// Synchronization never calls it: removed records are simply recreated from the other store.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("equipo_id = ?", id).Delete(&models.EspecificacionRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.EquipoRow{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to purge equipo %s: %w", id, err)
	}
	return removed > 0, nil
}

// Migrate creates or upgrades the schema. It returns the legacy columns that
// had to be added to an existing 'equipos' table; those are backfilled.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	db := s.db.WithContext(ctx)

	var added []string
	if db.Migrator().HasTable(&models.EquipoRow{}) {
		missing, err := database.MissingColumns(db, equiposTable, legacyColumns...)
		if err != nil {
			return nil, err
		}
		added = missing
	}

	if err := db.AutoMigrate(&models.EquipoRow{}, &models.EspecificacionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s schema: %w", s.name, err)
	}

	now := models.NormalizeTime(time.Now())
	backfill := map[string]func() error{
		"is_deleted": func() error {
			return db.Exec("UPDATE equipos SET is_deleted = ? WHERE is_deleted IS NULL", false).Error
		},
		"updated_at": func() error {
			return db.Exec("UPDATE equipos SET updated_at = COALESCE(created_at, ?) WHERE updated_at IS NULL", now).Error
		},
		"created_at": func() error {
			return db.Exec("UPDATE equipos SET created_at = COALESCE(updated_at, ?) WHERE created_at IS NULL", now).Error
		},
	}
	for _, col := range legacyColumns {
		if !slices.Contains(added, col) {
			continue
		}
		if err := backfill[col](); err != nil {
			return added, fmt.Errorf("failed to backfill %s.%s: %w", equiposTable, col, err)
		}
	}

	return added, nil
}

// attachSpecs loads the specifications of list in one query. Unless restrict is
// set, every specification row is read and orphans are dropped.
func (s *Store) attachSpecs(ctx context.Context, list []*models.Equipment, restrict bool) error {
	if len(list) == 0 {
		return nil
	}

	byID := make(map[string]*models.Equipment, len(list))
	ids := make([]string, 0, len(list))
	for _, e := range list {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	tx := s.db.WithContext(ctx).Table(specsTable).Order("id")
	if restrict {
		tx = tx.Where("equipo_id IN ?", ids)
	}

	var rows []models.EspecificacionRow
	if err := tx.Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to read %s especificaciones: %w", s.name, err)
	}

	for _, r := range rows {
		if e, ok := byID[r.EquipoID]; ok {
			e.Especificaciones = append(e.Especificaciones, models.Especificacion{Clave: r.Clave, Valor: r.Valor})
		}
	}
	return nil
}

func upsert(tx *gorm.DB, e *models.Equipment) error {
	if e == nil || e.ID == "" {
		return errors.New("cannot write equipo without id")
	}

	row := e.ToRow()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = row.UpdatedAt
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = models.NormalizeTime(time.Now())
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&row).Error
}

func replaceSpecs(tx *gorm.DB, id string, specs []models.Especificacion) error {
	if err := tx.Where("equipo_id = ?", id).Delete(&models.EspecificacionRow{}).Error; err != nil {
		return err
	}
	rows := models.SpecRows(id, specs)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func fromRows(rows []map[string]any) []*models.Equipment {
	list := make([]*models.Equipment, 0, len(rows))
	for _, row := range rows {
		created, _ := utils.ToTime(row["created_at"])
		updated, _ := utils.ToTime(row["updated_at"])
		list = append(list, &models.Equipment{
			ID:               utils.ToString(row["id"]),
			INE:              utils.ToString(row["ine"]),
			NNE:              utils.ToString(row["nne"]),
			Serie:            utils.ToString(row["serie"]),
			Tipo:             utils.ToString(row["tipo"]),
			Estado:           utils.ToString(row["estado"]),
			Responsable:      utils.ToString(row["responsable"]),
			Ubicacion:        utils.ToString(row["ubicacion"]),
			IsDeleted:        utils.ToBool(row["is_deleted"]),
			CreatedAt:        models.NormalizeTime(created),
			UpdatedAt:        models.NormalizeTime(updated),
			Especificaciones: []models.Especificacion{},
		})
	}
	return list
}
