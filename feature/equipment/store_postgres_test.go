package equipment

import (
	"context"
	"errors"
	"testing"
	"time"

	"equipment-inventory/feature/equipment/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

var equipoColumns = []string{
	"id", "ine", "nne", "serie", "tipo", "estado", "responsable", "ubicacion",
	"is_deleted", "created_at", "updated_at",
}

func TestStore_ReadAll_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, "remote")
	at := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "equipos" ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(equipoColumns).
			AddRow("eq_1", "PC-1", "N1", "S1", "Laptop", "Activo", "Ana", "Of 1", false, at, at).
			AddRow("eq_2", "PC-2", "N2", "S2", "Desktop", "Baja", "Luis", "Of 2", true, nil, nil))
	mock.ExpectQuery(`SELECT \* FROM "especificaciones" ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "equipo_id", "clave", "valor"}).
			AddRow(1, "eq_1", "RAM", "8GB").
			AddRow(2, "eq_9", "RAM", "4GB"))

	list, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, at, list[0].UpdatedAt)
	assert.Equal(t, []models.Especificacion{{Clave: "RAM", Valor: "8GB"}}, list[0].Especificaciones)
	assert.True(t, list[1].IsDeleted)
	assert.True(t, list[1].UpdatedAt.IsZero())
	assert.Empty(t, list[1].Especificaciones)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ReadAll_Unavailable(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, "remote")

	mock.ExpectQuery(`SELECT \* FROM "equipos"`).WillReturnError(errors.New("connection refused"))

	_, err := store.ReadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStore_Upsert_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, "remote")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "equipos" .* ON CONFLICT \("id"\) DO UPDATE SET "ine"="excluded"."ine".*"updated_at"="excluded"."updated_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Upsert(context.Background(), equipo("eq_1", "PC-1", ts(1))))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, "remote")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "equipos"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "especificaciones" WHERE equipo_id = \$1`).
		WithArgs("eq_1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), equipo("eq_1", "PC-1", ts(1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eq_1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
