package validation

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/singme/internal/domain"
)

func TestStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name       string
		input      domain.NewRecommendation
		wantFields []string
	}{
		{
			name:  "valid",
			input: domain.NewRecommendation{Name: "Falamansa - Xote dos Milagres", YoutubeLink: "https://www.youtube.com/watch?v=chwyjJbcs1Y"},
		},
		{
			name:       "missing name",
			input:      domain.NewRecommendation{YoutubeLink: "https://youtu.be/chwyjJbcs1Y"},
			wantFields: []string{"name"},
		},
		{
			name:       "link not from youtube",
			input:      domain.NewRecommendation{Name: "somewhere else", YoutubeLink: "https://vimeo.com/1"},
			wantFields: []string{"youtubeLink"},
		},
		{
			name:       "everything missing",
			input:      domain.NewRecommendation{},
			wantFields: []string{"name", "youtubeLink"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Struct() = %v, want nil", err)
				}
				return
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() = %v, want *domain.ValidationError", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors, want %d: %v", len(verr.Fields), len(tt.wantFields), verr)
			}
			for i, f := range tt.wantFields {
				if verr.Fields[i].Field != f {
					t.Errorf("field[%d] = %q, want %q", i, verr.Fields[i].Field, f)
				}
			}
		})
	}
}
