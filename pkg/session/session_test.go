package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stargraph/pkg/integrations/github"
)

func TestNew(t *testing.T) {
	viewer := &github.Viewer{ID: 1, NodeID: "U1", Login: "alice"}
	s := New("tok", viewer, time.Hour)

	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", s.ID, err)
	}
	if s.IsExpired() {
		t.Error("new session should not be expired")
	}
	if got := s.UserID(); got != "github:U1" {
		t.Errorf("UserID = %q", got)
	}
	if New("tok", viewer, time.Hour).ID == s.ID {
		t.Error("ids should be unique")
	}
}

func TestUserIDWithoutUser(t *testing.T) {
	var s *Session
	if s.UserID() != "" {
		t.Error("nil session should have no user id")
	}
	if (&Session{}).UserID() != "" {
		t.Error("session without user should have no user id")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sess := New("tok", &github.Viewer{Login: "alice"}, time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.AccessToken != "tok" || got.User.Login != "alice" {
		t.Errorf("session = %+v", got)
	}

	info, err := os.Stat(store.sessionPath(sess.ID))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("session should be gone after Delete")
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	old := New("tok", nil, -time.Minute)
	fresh := New("tok", nil, time.Hour)
	store.Set(ctx, old)
	store.Set(ctx, fresh)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(store.sessionPath(old.ID)); !os.IsNotExist(err) {
		t.Error("expired session file should be removed by Cleanup")
	}
	if got, _ := store.Get(ctx, fresh.ID); got == nil {
		t.Error("fresh session should survive Cleanup")
	}
}

func TestFileStorePathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Dir(store.sessionPath("../../etc/passwd")); got != dir {
		t.Errorf("session path escaped the store: %s", got)
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got, err := store.GetSession(ctx); got != nil || err != nil {
		t.Fatalf("empty store = %v, %v", got, err)
	}

	if err := store.SaveSession(ctx, New("tok", &github.Viewer{Login: "alice"}, DefaultTTL)); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetSession(ctx)
	if err != nil || got == nil || got.ID != defaultCLISessionID {
		t.Fatalf("GetSession = %+v, %v", got, err)
	}
	if filepath.Base(store.Path()) != "github.json" {
		t.Errorf("Path = %s", store.Path())
	}

	if err := store.DeleteSession(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.GetSession(ctx); got != nil {
		t.Error("session should be gone")
	}
}
