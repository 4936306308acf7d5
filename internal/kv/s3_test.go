package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in a map and records the keys it was asked for. It
// honors If-Match and If-None-Match the way S3 does, answering 412.
type fakeS3 struct {
	objects map[string]string
	etags   map[string]string
	version int

	// BeforePut runs before every PutObject, after its conditions are read.
	BeforePut func()

	GetErr    error
	PutErr    error
	DeleteErr error

	LastBucket string
	LastKey    string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, etags: map[string]string{}}
}

func (f *fakeS3) store(key, value string) {
	f.version++
	f.objects[key] = value
	f.etags[key] = fmt.Sprintf(`"v%d"`, f.version)
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.LastBucket, f.LastKey = aws.ToString(in.Bucket), aws.ToString(in.Key)
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	v, ok := f.objects[f.LastKey]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(v)),
		ETag: aws.String(f.etags[f.LastKey]),
	}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.LastBucket, f.LastKey = aws.ToString(in.Bucket), aws.ToString(in.Key)
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	if f.BeforePut != nil {
		f.BeforePut()
	}
	_, exists := f.objects[f.LastKey]
	if aws.ToString(in.IfNoneMatch) == "*" && exists {
		return nil, statusErr{code: http.StatusPreconditionFailed}
	}
	if in.IfMatch != nil && (!exists || aws.ToString(in.IfMatch) != f.etags[f.LastKey]) {
		return nil, statusErr{code: http.StatusPreconditionFailed}
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.store(f.LastKey, string(b))
	return &s3.PutObjectOutput{ETag: aws.String(f.etags[f.LastKey])}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.LastBucket, f.LastKey = aws.ToString(in.Bucket), aws.ToString(in.Key)
	if f.DeleteErr != nil {
		return nil, f.DeleteErr
	}
	delete(f.objects, f.LastKey)
	delete(f.etags, f.LastKey)
	return &s3.DeleteObjectOutput{}, nil
}

type statusErr struct{ code int }

func (e statusErr) Error() string       { return http.StatusText(e.code) }
func (e statusErr) HTTPStatusCode() int { return e.code }

func TestS3Storage_Contract(t *testing.T) {
	runContract(t, NewS3Storage(newFakeS3(), "vault", "sharejoy"))
}

func TestS3Storage_PrefixAndBucket(t *testing.T) {
	f := newFakeS3()
	s := NewS3Storage(f, "vault", "/sharejoy/device-1/")

	require.NoError(t, s.Set(context.Background(), "users", "{}"))
	assert.Equal(t, "vault", f.LastBucket)
	assert.Equal(t, "sharejoy/device-1/users", f.LastKey)

	s = NewS3Storage(f, "vault", "")
	_, _, _ = s.Get(context.Background(), "users")
	assert.Equal(t, "users", f.LastKey)
}

func TestS3Storage_Bare404IsAbsent(t *testing.T) {
	f := newFakeS3()
	f.GetErr = statusErr{code: http.StatusNotFound}
	f.DeleteErr = statusErr{code: http.StatusNotFound}
	s := NewS3Storage(f, "vault", "")

	_, found, err := s.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, s.Delete(context.Background(), "users"))
}

func TestS3Storage_ErrorsWrapped(t *testing.T) {
	f := newFakeS3()
	f.GetErr = statusErr{code: http.StatusForbidden}
	f.PutErr = errors.New("slow down")
	f.DeleteErr = errors.New("nope")
	s := NewS3Storage(f, "vault", "")
	ctx := context.Background()

	_, _, err := s.Get(ctx, "users")
	require.ErrorContains(t, err, "failed to get kv[users]")
	require.ErrorContains(t, s.Set(ctx, "users", "{}"), "failed to set kv[users]")
	require.ErrorContains(t, s.Delete(ctx, "users"), "failed to delete kv[users]")
}

func TestS3Storage_CompareAndSetLosesToConcurrentPut(t *testing.T) {
	f := newFakeS3()
	s := NewS3Storage(f, "vault", "")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", `{"a":{}}`))
	f.BeforePut = func() { f.store("users", `{"b":{}}`) }

	ok, err := s.CompareAndSet(ctx, "users", `{"a":{}}`, `{"a":{},"c":{}}`)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, `{"b":{}}`, f.objects["users"])
}

func TestS3Storage_CompareAndSetCreateLosesToConcurrentCreate(t *testing.T) {
	f := newFakeS3()
	s := NewS3Storage(f, "vault", "")
	f.BeforePut = func() { f.store("users", `{"b":{}}`) }

	ok, err := s.CompareAndSet(context.Background(), "users", "", `{"a":{}}`)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, `{"b":{}}`, f.objects["users"])
}

func TestS3Storage_CompareAndSetErrors(t *testing.T) {
	f := newFakeS3()
	s := NewS3Storage(f, "vault", "")
	ctx := context.Background()

	f.PutErr = statusErr{code: http.StatusConflict}
	ok, err := s.CompareAndSet(ctx, "users", "", "{}")
	require.NoError(t, err)
	assert.False(t, ok)

	f.PutErr = errors.New("slow down")
	_, err = s.CompareAndSet(ctx, "users", "", "{}")
	require.ErrorContains(t, err, "failed to compare-and-set kv[users]")

	f.GetErr = statusErr{code: http.StatusForbidden}
	_, err = s.CompareAndSet(ctx, "users", "", "{}")
	require.ErrorContains(t, err, "failed to get kv[users]")
}

func TestNewS3Client_AppliesEndpoint(t *testing.T) {
	c, err := NewS3Client(context.Background(), S3Config{
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
		AccessKey:    "admin",
		SecretKey:    "secretpassword",
	})
	require.NoError(t, err)

	opts := c.Options()
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "us-east-1", opts.Region)
}
