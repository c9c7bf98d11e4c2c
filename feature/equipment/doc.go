// Package equipment implements the equipment inventory: the gorm store shared by
// the local and remote databases, the CRUD service and its HTTP handlers.
//
// # Store
//
// Store is the only place that talks SQL. It exposes ReadAll (full snapshot with
// specifications), Upsert, ReplaceSpecifications, Save (both in a transaction),
// SoftDelete, DeleteByID and Migrate. The synchronization feature drives two
// stores through the same type.
//
// # HTTP API
//
//   - GET    /health             status and database dialect
//   - GET    /api/equipos?q=     list records that are not deleted
//   - GET    /api/equipos/:id    one record with its specifications
//   - POST   /api/equipos        create or update
//   - DELETE /api/equipos/:id    soft delete
//
// Deletes are soft: the record is kept with is_deleted set so the deletion
// reaches the other store on the next synchronization.
package equipment
