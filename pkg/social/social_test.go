package social

import (
	"strings"
	"testing"
)

func TestDecodeUserWithRepos(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNil   bool
		wantRepos int
		wantErr   bool
	}{
		{
			name:    "null",
			input:   `null`,
			wantNil: true,
		},
		{
			name:      "no stars",
			input:     `{"id":"U1","login":"alice"}`,
			wantRepos: 0,
		},
		{
			name: "skips null repos",
			input: `{"id":"U1","login":"alice","starredRepositories":{"nodes":[
				{"id":"R1","name":"proj","owner":{"id":"U2","login":"bob","isInOrganization":false}},
				null,
				{"id":"R2","name":"lib","owner":{"id":"O1","login":"acme","isInOrganization":true}}
			]}}`,
			wantRepos: 2,
		},
		{
			name:    "malformed",
			input:   `{"id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := DecodeUserWithRepos(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeUserWithRepos() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (u == nil) != tt.wantNil {
				t.Fatalf("nil payload = %v, want %v", u == nil, tt.wantNil)
			}
			if got := len(u.Repos()); got != tt.wantRepos {
				t.Errorf("len(Repos()) = %d, want %d", got, tt.wantRepos)
			}
		})
	}
}

func TestUserWithReposValid(t *testing.T) {
	var nilPayload *UserWithRepos
	if nilPayload.Valid() {
		t.Error("nil payload should be invalid")
	}
	if (&UserWithRepos{User: User{Login: "alice"}}).Valid() {
		t.Error("payload without id should be invalid")
	}
	if !(&UserWithRepos{User: User{ID: "U1"}}).Valid() {
		t.Error("payload with id should be valid")
	}
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindUser, KindRepo} {
		b, _ := k.MarshalText()
		var got Kind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != k {
			t.Errorf("got %v, want %v", got, k)
		}
	}
	var k Kind
	if err := k.UnmarshalText([]byte("org")); err == nil {
		t.Error("unknown kind should fail")
	}
}
