package migrate

import "testing"

func TestRefLayout_Pair(t *testing.T) {
	layout := RefLayout{
		SrcRegistry: "registry.src.example.com",
		DstRegistry: "registry.dst.example.com",
		DstGroup:    "migrated",
	}

	pair := layout.Pair("team-a", "app", "v2")
	if pair.Src != "registry.src.example.com/team-a/app:v2" {
		t.Errorf("Src = %q, want registry.src.example.com/team-a/app:v2", pair.Src)
	}
	if pair.Dst != "registry.dst.example.com/migrated/team-a/app:v2" {
		t.Errorf("Dst = %q, want registry.dst.example.com/migrated/team-a/app:v2", pair.Dst)
	}
}

func TestRefLayout_SourceRepo(t *testing.T) {
	layout := RefLayout{SrcRegistry: "registry.src.example.com"}
	if got := layout.SourceRepo("team-a", "app"); got != "registry.src.example.com/team-a/app" {
		t.Errorf("SourceRepo = %q, want registry.src.example.com/team-a/app", got)
	}
}

func TestDestinationRepoPath(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "full reference",
			ref:  "registry.dst.example.com/migrated/team-a/app:v2",
			want: "migrated/team-a/app",
		},
		{
			name: "registry with port",
			ref:  "registry.dst.example.com:5000/migrated/team-a/app:v2",
			want: "migrated/team-a/app",
		},
		{
			name: "no tag",
			ref:  "registry.dst.example.com/migrated/team-a/app",
			want: "migrated/team-a/app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DestinationRepoPath(tt.ref); got != tt.want {
				t.Errorf("DestinationRepoPath(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
