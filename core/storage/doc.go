// Package storage wraps the MinIO client used to keep spreadsheet exports.
//
// The Client interface mirrors the subset of minio.Client the application
// needs, so services can be tested against core/storage/mocks. NewClient
// builds a client with strict transport timeouts; it connects lazily.
//
//	client, err := storage.NewClient(cfg.Storage)
//	created, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
