// Package export writes the local inventory to XLSX workbooks in object storage.
//
// A workbook has one "Equipos" sheet with the columns INE, NNE, Serie, Tipo,
// Estado, Responsable, Ubicación and Especificaciones. Records are ordered by
// INE and soft-deleted ones are left out. Objects are named
// <prefix>/equipos_<YYYYMMDD_HHMMSS>.xlsx and only the newest Retention of them
// are kept.
//
// # Routes
//
//   - POST /api/exports: create an export.
//   - GET /api/exports: list exports, newest first.
//   - GET /api/exports/:name: download one export.
package export
