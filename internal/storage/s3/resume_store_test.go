package s3

import (
	"context"
	"strings"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-candidate-tracker/internal/domain"
	"go-candidate-tracker/pkg/apperror"
)

// fakeClient records the last call to each operation and returns canned
// results, standing in for the real S3 client.
type fakeClient struct {
	putInput    *awss3.PutObjectInput
	putErr      error
	deleteInput *awss3.DeleteObjectInput
	deleteErr   error
}

func (f *fakeClient) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.putInput = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, params *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.deleteInput = params
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &awss3.DeleteObjectOutput{}, nil
}

func newStore(client *fakeClient) domain.ResumeStore {
	return NewResumeStore(client, "resumes", "https://cdn.example.com/storage/v1")
}

func pdf(name string, size int64) domain.ResumeFile {
	return domain.ResumeFile{
		Name:        name,
		ContentType: "application/pdf",
		Size:        size,
		Content:     strings.NewReader("%PDF-1.4"),
	}
}

func TestUploadValidation(t *testing.T) {
	t.Run("Should reject anything but PDF before touching storage", func(t *testing.T) {
		client := &fakeClient{}
		_, err := newStore(client).Upload(context.Background(), "user1", domain.ResumeFile{
			Name:        "cv.docx",
			ContentType: "application/msword",
			Size:        100,
		})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Nil(t, client.putInput)
	})

	t.Run("Should reject files above 10MiB", func(t *testing.T) {
		client := &fakeClient{}
		_, err := newStore(client).Upload(context.Background(), "user1", pdf("cv.pdf", 10<<20+1))
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Nil(t, client.putInput)
	})

	t.Run("Should accept a file exactly at the limit", func(t *testing.T) {
		client := &fakeClient{}
		_, err := newStore(client).Upload(context.Background(), "user1", pdf("cv.pdf", 10<<20))
		assert.NoError(t, err)
		assert.NotNil(t, client.putInput)
	})
}

func TestUpload(t *testing.T) {
	t.Run("Should key by owner and sanitized name and return the public locator", func(t *testing.T) {
		client := &fakeClient{}
		url, err := newStore(client).Upload(context.Background(), "user1", pdf("Sơ yếu lý lịch.pdf", 1024))
		require.NoError(t, err)

		require.NotNil(t, client.putInput)
		assert.Equal(t, "resumes", *client.putInput.Bucket)
		assert.Equal(t, "user1/so-yeu-ly-lich.pdf", *client.putInput.Key)
		assert.Equal(t, "application/pdf", *client.putInput.ContentType)
		assert.Equal(t, int64(1024), *client.putInput.ContentLength)
		assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/resumes/user1/so-yeu-ly-lich.pdf", url)
	})

	t.Run("Should request a non-overwriting put", func(t *testing.T) {
		client := &fakeClient{}
		_, err := newStore(client).Upload(context.Background(), "user1", pdf("cv.pdf", 1024))
		require.NoError(t, err)
		require.NotNil(t, client.putInput.IfNoneMatch)
		assert.Equal(t, "*", *client.putInput.IfNoneMatch)
	})

	t.Run("Should surface a key collision as a storage conflict", func(t *testing.T) {
		client := &fakeClient{putErr: &smithy.GenericAPIError{
			Code: "PreconditionFailed", Message: "object already exists",
		}}
		_, err := newStore(client).Upload(context.Background(), "user1", pdf("cv.pdf", 1024))
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindStorage))
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Should wrap other provider failures as storage errors", func(t *testing.T) {
		client := &fakeClient{putErr: &smithy.GenericAPIError{Code: "SlowDown"}}
		_, err := newStore(client).Upload(context.Background(), "user1", pdf("cv.pdf", 1024))
		assert.True(t, apperror.IsKind(err, apperror.KindStorage))
	})
}

func TestDelete(t *testing.T) {
	t.Run("Should extract the object key from a well-formed locator", func(t *testing.T) {
		client := &fakeClient{}
		err := newStore(client).Delete(context.Background(),
			"https://cdn.example.com/storage/v1/object/public/resumes/user1/cv.pdf")
		require.NoError(t, err)
		require.NotNil(t, client.deleteInput)
		assert.Equal(t, "resumes", *client.deleteInput.Bucket)
		assert.Equal(t, "user1/cv.pdf", *client.deleteInput.Key)
	})

	t.Run("Should refuse locators outside the resume prefix", func(t *testing.T) {
		for _, fileURL := range []string{
			"https://cdn.example.com/storage/v1/object/public/avatars/user1/cv.pdf",
			"https://cdn.example.com/other/path/cv.pdf",
			"https://cdn.example.com/storage/v1/object/public/resumes/",
			"not a url at all",
		} {
			client := &fakeClient{}
			err := newStore(client).Delete(context.Background(), fileURL)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation), "url %q", fileURL)
			assert.Nil(t, client.deleteInput, "url %q", fileURL)
		}
	})

	t.Run("Should wrap provider failures as storage errors", func(t *testing.T) {
		client := &fakeClient{deleteErr: &smithy.GenericAPIError{Code: "AccessDenied"}}
		err := newStore(client).Delete(context.Background(),
			"https://cdn.example.com/storage/v1/object/public/resumes/user1/cv.pdf")
		assert.True(t, apperror.IsKind(err, apperror.KindStorage))
	})
}
