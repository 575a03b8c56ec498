package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"document-manager/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "documents/"

// Client is the subset of *s3.Client the store uses.
type Client interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type documentStore struct {
	s3Client Client
	bucket   string // Name of the S3 bucket
}

// NewDocumentStore loads the default AWS configuration (environment, shared
// config files, instance roles) and stores documents in bucketName.
func NewDocumentStore(ctx context.Context, bucketName string) (core.DocumentStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewDocumentStoreWithClient(s3.NewFromConfig(cfg), bucketName), nil
}

func NewDocumentStoreWithClient(client Client, bucketName string) core.DocumentStore {
	return &documentStore{
		s3Client: client,
		bucket:   bucketName,
	}
}

func objectKey(id string) string {
	return keyPrefix + id + ".json"
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithFields(logrus.Fields{"document_id": id, "bucket": s.bucket})
	document, err := s.get(ctx, objectKey(id))
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			log.Debug("Document with specified ID not found")
			return nil, nil
		}
		log.WithField("error", err).Error("Failed to retrieve document")
		return nil, fmt.Errorf("failed to get document with id %s: %w", id, err)
	}
	return document, nil
}

func (s *documentStore) get(ctx context.Context, key string) (*core.Document, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document data: %w", err)
	}
	var document core.Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &document, nil
}

func (s *documentStore) Save(ctx context.Context, document *core.Document) (*core.Document, error) {
	if document == nil {
		return nil, core.ErrNilDocument
	}
	if document.ID == "" {
		document.ID = core.NewID()
	}
	data, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(document.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}
	logrus.WithFields(logrus.Fields{"document_id": document.ID, "bucket": s.bucket}).Debug("Document uploaded")
	return document.Clone(), nil
}

func (s *documentStore) Search(ctx context.Context, request *core.SearchRequest) ([]*core.Document, error) {
	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})

	result := make([]*core.Document, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			document, err := s.get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to get %s: %w", key, err)
			}
			if request.Matches(document) {
				result = append(result, document)
			}
		}
	}
	return result, nil
}
