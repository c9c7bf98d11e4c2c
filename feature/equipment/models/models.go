package models

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Especificacion is a free-form attribute of an equipment record.
type Especificacion struct {
	Clave string `json:"clave"`
	Valor string `json:"valor"`
}

// Equipment is one inventory asset with its specifications.
type Equipment struct {
	ID               string           `json:"id"`
	INE              string           `json:"ine"`
	NNE              string           `json:"nne"`
	Serie            string           `json:"serie"`
	Tipo             string           `json:"tipo"`
	Estado           string           `json:"estado"`
	Responsable      string           `json:"responsable"`
	Ubicacion        string           `json:"ubicacion"`
	IsDeleted        bool             `json:"is_deleted"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Especificaciones []Especificacion `json:"especificaciones"`
}

// Key returns the record identity.
func (e *Equipment) Key() string { return e.ID }

// Modified returns the last mutation time.
func (e *Equipment) Modified() time.Time { return e.UpdatedAt }

// Deleted reports whether the record is soft-deleted.
func (e *Equipment) Deleted() bool { return e.IsDeleted }

// Label returns the inventory number, or the id when it is empty.
func (e *Equipment) Label() string {
	if e.INE != "" {
		return e.INE
	}
	return e.ID
}

// Fingerprint returns the content digest used to detect conflicting edits.
func (e *Equipment) Fingerprint() string {
	return Fingerprint(e)
}

// Fingerprint hashes the scalar fields of a record, in a fixed order.
// Specifications are not part of the digest.
func Fingerprint(e *Equipment) string {
	joined := strings.Join([]string{
		e.ID,
		e.INE,
		e.NNE,
		e.Serie,
		e.Tipo,
		e.Estado,
		e.Responsable,
		e.Ubicacion,
		strconv.FormatBool(e.IsDeleted),
	}, "|")
	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// MissingFields returns the names of the required scalar fields that are blank.
func (e *Equipment) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"ine", e.INE},
		{"nne", e.NNE},
		{"serie", e.Serie},
		{"tipo", e.Tipo},
		{"estado", e.Estado},
		{"responsable", e.Responsable},
		{"ubicacion", e.Ubicacion},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// NormalizeTime truncates to microseconds in UTC, the precision every supported
// database keeps, so a timestamp reads back equal to what was written.
func NormalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Microsecond)
}

// NormalizeEspecificaciones trims keys and values and drops entries where either is empty.
func NormalizeEspecificaciones(specs []Especificacion) []Especificacion {
	out := make([]Especificacion, 0, len(specs))
	for _, s := range specs {
		clave := strings.TrimSpace(s.Clave)
		valor := strings.TrimSpace(s.Valor)
		if clave == "" || valor == "" {
			continue
		}
		out = append(out, Especificacion{Clave: clave, Valor: valor})
	}
	return out
}
