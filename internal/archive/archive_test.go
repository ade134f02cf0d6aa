package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pinot/internal/model"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestArchive(t *testing.T) {
	up := &fakeUploader{}
	a := NewWithClient(up, "pinot-results")

	results := &model.EventResults{
		EventID:  "evt-1",
		Solution: map[string]string{"ETQ-1": "oros-1"},
	}
	if err := a.Archive(context.Background(), results); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if aws.ToString(up.input.Bucket) != "pinot-results" {
		t.Errorf("Expected bucket pinot-results, got %s", aws.ToString(up.input.Bucket))
	}
	if aws.ToString(up.input.Key) != "events/evt-1/results.json" {
		t.Errorf("Unexpected key %s", aws.ToString(up.input.Key))
	}

	var decoded model.EventResults
	if err := json.Unmarshal(up.body, &decoded); err != nil {
		t.Fatalf("Body is not JSON: %v", err)
	}
	if decoded.Solution["ETQ-1"] != "oros-1" {
		t.Errorf("Expected solution in body, got %v", decoded.Solution)
	}
}

func TestArchiveUploadError(t *testing.T) {
	a := NewWithClient(&fakeUploader{err: errors.New("access denied")}, "b")

	if err := a.Archive(context.Background(), &model.EventResults{EventID: "e"}); err == nil {
		t.Error("Expected error from failed upload")
	}
}
