package models

import "time"

// EquipoRow is the 'equipos' table. Timestamps are always written explicitly.
type EquipoRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	INE         string    `gorm:"column:ine;not null"`
	NNE         string    `gorm:"column:nne;not null"`
	Serie       string    `gorm:"column:serie;not null"`
	Tipo        string    `gorm:"column:tipo;not null"`
	Estado      string    `gorm:"column:estado;not null"`
	Responsable string    `gorm:"column:responsable;not null"`
	Ubicacion   string    `gorm:"column:ubicacion;not null"`
	IsDeleted   bool      `gorm:"column:is_deleted"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName overrides the table name.
func (EquipoRow) TableName() string {
	return "equipos"
}

// EspecificacionRow is the 'especificaciones' table.
type EspecificacionRow struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement"`
	EquipoID string `gorm:"column:equipo_id;not null;index"`
	Clave    string `gorm:"column:clave;not null"`
	Valor    string `gorm:"column:valor;not null"`
}

// TableName overrides the table name.
func (EspecificacionRow) TableName() string {
	return "especificaciones"
}

// ToRow converts a record into its table row. Timestamps are normalized.
func (e *Equipment) ToRow() EquipoRow {
	return EquipoRow{
		ID:          e.ID,
		INE:         e.INE,
		NNE:         e.NNE,
		Serie:       e.Serie,
		Tipo:        e.Tipo,
		Estado:      e.Estado,
		Responsable: e.Responsable,
		Ubicacion:   e.Ubicacion,
		IsDeleted:   e.IsDeleted,
		CreatedAt:   NormalizeTime(e.CreatedAt),
		UpdatedAt:   NormalizeTime(e.UpdatedAt),
	}
}

// SpecRows converts specifications into rows owned by equipoID.
// Specifications are normalized first.
func SpecRows(equipoID string, specs []Especificacion) []EspecificacionRow {
	normalized := NormalizeEspecificaciones(specs)
	rows := make([]EspecificacionRow, 0, len(normalized))
	for _, s := range normalized {
		rows = append(rows, EspecificacionRow{EquipoID: equipoID, Clave: s.Clave, Valor: s.Valor})
	}
	return rows
}
