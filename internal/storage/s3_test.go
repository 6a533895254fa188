package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicBase(t *testing.T) {
	require.Equal(t, "https://cdn.example.com",
		publicBase(S3Options{PublicURL: "https://cdn.example.com/", Endpoint: "http://minio:9000", Bucket: "media"}))
	require.Equal(t, "http://minio:9000/media",
		publicBase(S3Options{Endpoint: "http://minio:9000/", Bucket: "media"}))
	require.Equal(t, "https://media.s3.eu-west-1.amazonaws.com",
		publicBase(S3Options{Bucket: "media", Region: "eu-west-1"}))
}
