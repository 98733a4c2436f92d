package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pasteleria/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Almacen persists generated report PDFs and returns a locator
// (filesystem path or s3:// URI).
type Almacen interface {
	Guardar(ctx context.Context, nombre, contentType string, datos []byte) (string, error)
}

// NewAlmacen picks the backend from STORAGE_DRIVER.
func NewAlmacen(cfg *config.Config) (Almacen, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Almacen(cfg)
	case "local", "":
		return NewLocalAlmacen(cfg.PDFStoragePath), nil
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.StorageDriver)
	}
}

// ── Local ────────────────────────────────────────────────────────────────────

type LocalAlmacen struct {
	dir string
}

func NewLocalAlmacen(dir string) *LocalAlmacen {
	return &LocalAlmacen{dir: dir}
}

func (a *LocalAlmacen) Guardar(_ context.Context, nombre, _ string, datos []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	path := filepath.Join(a.dir, filepath.Base(nombre))
	if err := os.WriteFile(path, datos, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return path, nil
}

// ── S3 / MinIO ───────────────────────────────────────────────────────────────

type S3Almacen struct {
	client *s3.Client
	bucket string
}

// NewS3Almacen works with AWS S3 and S3-compatible servers (MinIO) when
// S3_ENDPOINT is set.
func NewS3Almacen(cfg *config.Config) (*S3Almacen, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage: S3_BUCKET es requerido")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, errors.New("storage: credenciales S3 requeridas")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	endpoint := cfg.S3Endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if endpoint != "" {
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &S3Almacen{client: client, bucket: cfg.S3Bucket}, nil
}

func (a *S3Almacen) Guardar(ctx context.Context, nombre, contentType string, datos []byte) (string, error) {
	key := "reportes/" + filepath.Base(nombre)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(datos),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(datos))),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
