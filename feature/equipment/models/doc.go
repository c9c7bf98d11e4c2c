// Package models defines the equipment record, its specifications and the
// gorm row types of the 'equipos' and 'especificaciones' tables.
//
// Equipment satisfies the record contract of the reconcile engine: its key is
// the id, its modification time is updated_at and its fingerprint is an MD5
// digest of the scalar fields.
package models
