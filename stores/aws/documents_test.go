package aws

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"document-manager/core"
	"document-manager/stores/storetest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects of a single bucket in memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(params.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestDocumentStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DocumentStore {
		return NewDocumentStoreWithClient(newFakeS3(), "documents-bucket")
	})
}

func TestObjectLayout(t *testing.T) {
	client := newFakeS3()
	s := NewDocumentStoreWithClient(client, "documents-bucket")

	saved, err := s.Save(context.Background(), &core.Document{Title: "layout"})
	require.NoError(t, err)

	_, ok := client.objects["documents/"+saved.ID+".json"]
	assert.True(t, ok)
}

func TestSearchSkipsForeignObjects(t *testing.T) {
	client := newFakeS3()
	client.objects["documents/notes.txt"] = []byte("plain text")
	client.objects["other/x.json"] = []byte("{}")
	s := NewDocumentStoreWithClient(client, "documents-bucket")

	_, err := s.Save(context.Background(), &core.Document{Title: "only"})
	require.NoError(t, err)

	docs, err := s.Search(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "only", docs[0].Title)
}

func TestFindIDPropagatesErrors(t *testing.T) {
	client := newFakeS3()
	client.getErr = errors.New("access denied")
	s := NewDocumentStoreWithClient(client, "documents-bucket")

	found, err := s.FindID(context.Background(), "d1")
	assert.Nil(t, found)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
