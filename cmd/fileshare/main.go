// Package main is the entry point for the FileShare web service, the
// workload the fsdeploy deployment provisions. It serves file uploads and
// downloads backed by S3 and a PostgreSQL connectivity check, configured
// entirely through the environment the deployment injects.
package main

import (
	"context"
	"log"

	"github.com/fileshare/fsdeploy/internal/fileshare"
	"github.com/fileshare/fsdeploy/internal/platform/s3"
)

func main() {
	cfg, err := fileshare.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	storageClient, err := s3.NewClient(context.Background(), cfg.Region)
	if err != nil {
		log.Fatalf("failed to create S3 client: %v", err)
	}

	srv := fileshare.NewServer(
		fileshare.NewBucketStore(storageClient, cfg.Bucket),
		fileshare.NewDatabase(cfg.ConnString()),
	)

	log.Printf("FileShare serving on %s (bucket %s)", cfg.ListenAddr, cfg.Bucket)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
