package proc

import (
	"errors"
	"testing"
)

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want error
	}{
		{"valid", Descriptor{ID: 1, ArrivalTime: 0, Runtime: 5, Priority: 3}, nil},
		{"zero priority ok", Descriptor{ID: 1, ArrivalTime: 0, Runtime: 5, Priority: MinPriority}, nil},
		{"max priority ok", Descriptor{ID: 1, ArrivalTime: 0, Runtime: 5, Priority: MaxPriority}, nil},
		{"zero id", Descriptor{ID: 0, ArrivalTime: 0, Runtime: 5, Priority: 0}, ErrNonPositiveID},
		{"negative id", Descriptor{ID: -1, ArrivalTime: 0, Runtime: 5, Priority: 0}, ErrNonPositiveID},
		{"negative arrival", Descriptor{ID: 1, ArrivalTime: -1, Runtime: 5, Priority: 0}, ErrNegativeArrival},
		{"zero runtime", Descriptor{ID: 1, ArrivalTime: 0, Runtime: 0, Priority: 0}, ErrNonPositiveRuntime},
		{"negative runtime", Descriptor{ID: 1, ArrivalTime: 0, Runtime: -2, Priority: 0}, ErrNonPositiveRuntime},
		{"priority too low", Descriptor{ID: 1, ArrivalTime: 0, Runtime: 5, Priority: -1}, ErrPriorityOutOfRange},
		{"priority too high", Descriptor{ID: 1, ArrivalTime: 0, Runtime: 5, Priority: 11}, ErrPriorityOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()

			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}

				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want wrapping %v", err, tt.want)
			}
		})
	}
}
