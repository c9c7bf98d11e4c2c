package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"equipment-inventory/core/storage"
	"equipment-inventory/feature/equipment/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when an export does not exist.
	ErrNotFound = errors.New("export not found")
	// ErrInvalidName is returned for names that are not export file names.
	ErrInvalidName = errors.New("invalid export name")
)

const (
	namePrefix   = "equipos_"
	nameSuffix   = ".xlsx"
	timestampFmt = "20060102_150405"
)

// Source provides the records to export.
type Source interface {
	Search(ctx context.Context, query string) ([]*models.Equipment, error)
}

// Export describes one workbook in object storage.
type Export struct {
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	Rows      int       `json:"rows,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service writes inventory workbooks to object storage and manages their retention.
type Service struct {
	source Source
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new export service.
func NewService(source Source, client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		client: client,
		bucket: bucket,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Create exports every record that is not deleted, ordered by INE, then prunes
// exports beyond the retention. Pruning failures are logged only.
func (s *Service) Create(ctx context.Context) (*Export, error) {
	list, err := s.source.Search(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read equipos: %w", err)
	}

	data, err := Workbook(list)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	name := namePrefix + now.Format(timestampFmt) + nameSuffix
	key := s.key(name)

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: ContentType})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.logger.Info("Export uploaded",
		zap.String("key", key),
		zap.Int("rows", len(list)),
		zap.Int("bytes", len(data)),
	)

	if removed, err := s.Prune(ctx); err != nil {
		s.logger.Warn("Failed to prune exports", zap.Error(err))
	} else if removed > 0 {
		s.logger.Info("Old exports removed", zap.Int("count", removed))
	}

	return &Export{Name: name, Key: key, Size: int64(len(data)), Rows: len(list), CreatedAt: now}, nil
}

// List returns the stored exports, newest first.
func (s *Service) List(ctx context.Context) ([]Export, error) {
	opts := minio.ListObjectsOptions{Prefix: s.key(""), Recursive: true}

	var list []Export
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		if !validName(name) {
			continue
		}
		list = append(list, Export{Name: name, Key: obj.Key, Size: obj.Size, CreatedAt: obj.LastModified})
	}

	// Names embed the creation time, so they sort chronologically.
	sort.Slice(list, func(i, j int) bool { return list[i].Name > list[j].Name })
	return list, nil
}

// Download returns the content of one export.
func (s *Service) Download(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, notFound(name, err)
	}
	return data, nil
}

// Prune removes the oldest exports beyond the retention and returns how many
// were removed. A retention of zero keeps everything.
func (s *Service) Prune(ctx context.Context) (int, error) {
	if s.cfg.Retention <= 0 {
		return 0, nil
	}

	list, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(list) <= s.cfg.Retention {
		return 0, nil
	}

	stale := list[s.cfg.Retention:]
	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, e := range stale {
		objectsCh <- minio.ObjectInfo{Key: e.Key}
	}
	close(objectsCh)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return len(stale) - len(errs), fmt.Errorf("failed to remove exports: %w", errors.Join(errs...))
	}
	return len(stale), nil
}

func (s *Service) key(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func validName(name string) bool {
	return strings.HasPrefix(name, namePrefix) && strings.HasSuffix(name, nameSuffix) &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func notFound(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("failed to download %s: %w", name, err)
}
