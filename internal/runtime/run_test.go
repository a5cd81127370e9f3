package runtime

import (
	"slices"
	"testing"
)

func TestResolveInvocation(t *testing.T) {
	imageEntrypoint := []string{"python", "-m", "app"}
	imageCmd := []string{"-i", "/video"}

	tests := []struct {
		name       string
		entrypoint []string
		args       []string
		want       []string
	}{
		{
			name: "image defaults",
			want: []string{"python", "-m", "app", "-i", "/video"},
		},
		{
			name: "args replace image defaults",
			args: []string{"-i", "/mnt/media", "--dry-run"},
			want: []string{"python", "-m", "app", "-i", "/mnt/media", "--dry-run"},
		},
		{
			name:       "entrypoint override clears image defaults",
			entrypoint: []string{"/bin/sh"},
			want:       []string{"/bin/sh"},
		},
		{
			name:       "entrypoint override with args",
			entrypoint: []string{"/bin/sh", "-c"},
			args:       []string{"env"},
			want:       []string{"/bin/sh", "-c", "env"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveInvocation(imageEntrypoint, imageCmd, tt.entrypoint, tt.args)
			if !slices.Equal(got, tt.want) {
				t.Errorf("argv = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveInvocationNoImageDefaults(t *testing.T) {
	got := resolveInvocation(nil, []string{"bash"}, nil, nil)
	if !slices.Equal(got, []string{"bash"}) {
		t.Errorf("argv = %v, want [bash]", got)
	}
}
