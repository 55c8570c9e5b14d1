package gcsuploader

import "context"

// StorageService is the object storage surface used by document loading and exports.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) (string, error)
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) (string, error)
}

var _ StorageService = (*GCSStorageService)(nil)
