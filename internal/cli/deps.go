package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/config"
	"github.com/kailas-cloud/tagdex/internal/db"
	dbBolt "github.com/kailas-cloud/tagdex/internal/db/bolt"
	dbRedis "github.com/kailas-cloud/tagdex/internal/db/redis"
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
	"github.com/kailas-cloud/tagdex/internal/repository/artifact"
	recordrepo "github.com/kailas-cloud/tagdex/internal/repository/record"
)

// recordStore is what the commands need from a record backend.
type recordStore interface {
	ReadAll(ctx context.Context) ([]domrec.Record, error)
	Append(ctx context.Context, c domrec.Candidate) (domrec.Record, error)
	Ping(ctx context.Context) error
	Close()
}

// seqRecordStore pairs a sequenced-list repository with the store that backs it.
type seqRecordStore struct {
	*recordrepo.Repo
	store db.Store
}

func (s *seqRecordStore) Ping(ctx context.Context) error { return s.store.Ping(ctx) }
func (s *seqRecordStore) Close()                         { s.store.Close() }

// openRecords builds the record store selected by storage.driver.
func openRecords(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (recordStore, error) {
	readiness := time.Duration(cfg.ReadinessTimeout) * time.Second

	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverFile:
		log.Info("Using JSON file record store", zap.String("path", cfg.Path))
		return recordrepo.NewFile(cfg.Path), nil
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case config.DriverBolt:
		store, err = dbBolt.NewStore(dbBolt.Config{Path: cfg.Path, LockTimeout: readiness})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}
	log.Info("Connected to record store",
		zap.String("driver", cfg.Driver),
		zap.Strings("addrs", cfg.Addrs),
		zap.String("path", cfg.Path),
	)

	return &seqRecordStore{Repo: recordrepo.New(store, cfg.KeyPrefix), store: store}, nil
}

// artifactStore is what the server needs from upload storage.
type artifactStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, name string) (*artifact.Object, error)
	Ping(ctx context.Context) error
}

// openArtifacts builds the upload store selected by uploads.driver.
func openArtifacts(ctx context.Context, cfg config.UploadsConfig, log *zap.Logger) (artifactStore, error) {
	switch cfg.Driver {
	case config.UploadsLocal:
		s, err := artifact.NewLocal(cfg.Dir, cfg.FallbackDir, log)
		if err != nil {
			return nil, err
		}
		log.Info("Using local upload store", zap.String("dir", s.Dir()))
		return s, nil
	case config.UploadsMinio:
		s, err := artifact.NewMinio(ctx, artifact.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Prefix:    cfg.Minio.Prefix,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Using object store for uploads",
			zap.String("endpoint", cfg.Minio.Endpoint),
			zap.String("bucket", cfg.Minio.Bucket),
		)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown uploads driver %q", cfg.Driver)
	}
}
