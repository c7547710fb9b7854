package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gbtree/blobstore"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.HeadObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func keyIs(key string) interface{} {
	return mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == "models" && aws.ToString(in.Key) == key
	})
}

func TestStoreOpenNotFound(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "models", "ctr")

	client.On("HeadObject", mock.Anything, keyIs("ctr/missing.bin")).
		Return(nil, &types.NotFound{}).Once()

	_, err := store.Open(context.Background(), "missing.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	client.AssertExpectations(t)
}

func TestStoreViewRangedRead(t *testing.T) {
	payload := []byte("model-bytes-0123456789")
	client := new(mockClient)
	store := NewStore(client, "models", "ctr")

	client.On("HeadObject", mock.Anything, keyIs("ctr/v12.bin")).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(payload)))}, nil).Once()
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "ctr/v12.bin" &&
			aws.ToString(in.Range) == "bytes=0-21"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(payload))}, nil).Once()

	got, err := blobstore.ReadAll(context.Background(), store, "v12.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	client.AssertExpectations(t)
}

func TestBlobReadAtPastEnd(t *testing.T) {
	b := &blob{client: new(mockClient), bucket: "models", key: "k", size: 4}
	n, err := b.ReadAt(context.Background(), make([]byte, 2), 4)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestBlobReadAtShortTail(t *testing.T) {
	client := new(mockClient)
	b := &blob{client: client, bucket: "models", key: "k", size: 6}

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Range) == "bytes=4-5"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("ef")))}, nil).Once()

	p := make([]byte, 4)
	n, err := b.ReadAt(context.Background(), p, 4)
	assert.Equal(t, 2, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []byte("ef"), p[:n])
}
