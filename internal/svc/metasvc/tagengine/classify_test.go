package tagengine_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rglek0/Metadata-Editor/internal/svc/metasvc/tagengine"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want tagengine.FailureKind
	}{
		{
			name: "nil error",
			err:  nil,
			want: tagengine.FailureGeneric,
		},
		{
			name: "unrelated error",
			err:  errors.New("exiftool: file not found"),
			want: tagengine.FailureGeneric,
		},
		{
			name: "bad offset signature",
			err:  errors.New("exiftool: Error: Bad offset for IFD0 entry 12"),
			want: tagengine.FailureBadOffset,
		},
		{
			name: "maker notes signature",
			err:  errors.New("exiftool: Error: [minor] MakerNotes could not be parsed"),
			want: tagengine.FailureMakerNotes,
		},
		{
			name: "signature inside wrapped error",
			err:  fmt.Errorf("write tags: %w", errors.New("exiftool: bad offset in IFD1")),
			want: tagengine.FailureBadOffset,
		},
		{
			name: "case insensitive match",
			err:  errors.New("MAKERNOTES offset corrupt"),
			want: tagengine.FailureMakerNotes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tagengine.Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
