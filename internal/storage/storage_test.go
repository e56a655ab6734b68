package storage_test

import (
	"errors"
	"strings"
	"testing"

	"alcyxob/gym-portal/internal/storage"
)

func TestPlanAttachmentKey(t *testing.T) {
	tests := []struct {
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{contentType: "application/pdf", wantExt: ".pdf"},
		{contentType: "IMAGE/PNG", wantExt: ".png"},
		{contentType: "image/jpeg", wantExt: ".jpg"},
		{contentType: "video/mp4", wantErr: true},
		{contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			key, err := storage.PlanAttachmentKey("abc123", tt.contentType)
			if tt.wantErr {
				if !errors.Is(err, storage.ErrUnsupportedContentType) {
					t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(key, "plan-requests/abc123/") || !strings.HasSuffix(key, tt.wantExt) {
				t.Errorf("unexpected key %q", key)
			}
		})
	}

	a, _ := storage.PlanAttachmentKey("abc123", "application/pdf")
	b, _ := storage.PlanAttachmentKey("abc123", "application/pdf")
	if a == b {
		t.Errorf("keys must be unique, got %q twice", a)
	}
}
