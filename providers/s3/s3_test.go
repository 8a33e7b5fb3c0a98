package s3bucket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hengadev/recordseal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client keeps objects in memory and records the last upload.
type mockS3Client struct {
	objects       map[string][]byte
	lastPut       *s3.PutObjectInput
	getObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	putObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	headBucketErr error
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: map[string][]byte{}}
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getObjectFunc != nil {
		return m.getObjectFunc(ctx, params, optFns...)
	}
	data, ok := m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params, optFns...)
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.lastPut = params
	m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.headBucketErr != nil {
		return nil, m.headBucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestBucket_Ping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantErr  bool
		notFound bool
	}{
		{"reachable", nil, false, false},
		{"missing bucket", &types.NotFound{}, true, true},
		{"access denied", errors.New("api error AccessDenied"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockS3Client()
			client.headBucketErr = tt.err
			b, err := NewWithClient(client, "uploads", "records")
			require.NoError(t, err)

			err = b.Ping(context.Background())
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, recordseal.ErrNotFound))
		})
	}
}

func TestNewWithClient(t *testing.T) {
	tests := []struct {
		name    string
		client  Client
		bucket  string
		wantErr bool
	}{
		{"valid", newMockS3Client(), "uploads", false},
		{"nil client", nil, "uploads", true},
		{"empty bucket", newMockS3Client(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewWithClient(tt.client, tt.bucket, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, recordseal.ErrInvalidConfiguration)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, b)
		})
	}
}

func TestBucket_Key(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "H001.csv", "H001.csv"},
		{"records", "H001.csv", "records/H001.csv"},
		{"/records/", "sealed/H001.csv", "records/sealed/H001.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			b, err := NewWithClient(newMockS3Client(), "uploads", tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Key(tt.name))
		})
	}
}

func TestBucket_PutThenGet(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	b, err := NewWithClient(client, "uploads", "records")
	require.NoError(t, err)

	data := []byte("name,age\nAlice,40\n")
	require.NoError(t, b.Put(ctx, "H001.csv", data))

	require.NotNil(t, client.lastPut)
	assert.Equal(t, "records/H001.csv", aws.ToString(client.lastPut.Key))
	assert.Equal(t, "text/csv", aws.ToString(client.lastPut.ContentType))
	assert.Equal(t, int64(len(data)), aws.ToInt64(client.lastPut.ContentLength))

	got, err := b.Get(ctx, "H001.csv")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBucket_PutCiphertextContentType(t *testing.T) {
	client := newMockS3Client()
	b, err := NewWithClient(client, "uploads", "")
	require.NoError(t, err)

	require.NoError(t, b.Put(context.Background(), "encrypted/H001.enc", []byte{0x01, 0x02}))
	assert.Equal(t, "application/octet-stream", aws.ToString(client.lastPut.ContentType))
}

func TestBucket_GetMissingObject(t *testing.T) {
	b, err := NewWithClient(newMockS3Client(), "uploads", "")
	require.NoError(t, err)

	_, err = b.Get(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, recordseal.ErrNotFound)
	assert.True(t, recordseal.IsSourceError(err))
}

func TestBucket_ClientErrors(t *testing.T) {
	boom := errors.New("connection reset")
	client := newMockS3Client()
	client.getObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, boom
	}
	client.putObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, boom
	}
	b, err := NewWithClient(client, "uploads", "")
	require.NoError(t, err)

	_, err = b.Get(context.Background(), "H001.csv")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, recordseal.ErrNotFound)

	err = b.Put(context.Background(), "H001.csv", []byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestBucket_AsPipelineSource(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	b, err := NewWithClient(client, "uploads", "records")
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "H001.csv", []byte("name,age\nAlice,40\n")))

	p, _, err := recordseal.NewTestPipeline(nil, recordseal.WithSource(b))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Process(ctx, "H001")
	require.NoError(t, err)
	assert.Contains(t, client.objects, "uploads/records/sealed/H001.csv")
	assert.Contains(t, client.objects, "uploads/records/encrypted/H001.enc")

	verdict, err := p.Validate(ctx, "H001")
	require.NoError(t, err)
	assert.Equal(t, recordseal.Verified, verdict.Outcome)
}
