package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Open selects a Store implementation from environment variables.
//
//	BROODCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	BROODCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	BROODCORE_BLOB_S3_BUCKET: bucket name, required when driver=s3
//	BROODCORE_BLOB_S3_REGION: region (default us-east-1)
//	BROODCORE_BLOB_S3_ENDPOINT: custom endpoint, for MinIO
//	BROODCORE_BLOB_S3_PATH_STYLE: true|false (default false)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("BROODCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("BROODCORE_BLOB_FS_ROOT"))
	case DriverS3:
		bucket := os.Getenv("BROODCORE_BLOB_S3_BUCKET")
		if bucket == "" {
			return nil, fmt.Errorf("BROODCORE_BLOB_S3_BUCKET required for s3 driver")
		}
		return NewS3(ctx, S3Config{
			Bucket:    bucket,
			Region:    os.Getenv("BROODCORE_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("BROODCORE_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("BROODCORE_BLOB_S3_PATH_STYLE"), "true"),
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
