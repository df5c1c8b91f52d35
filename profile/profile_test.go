package profile

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"linkup/api"
	"linkup/models"
	"linkup/securestore"
)

type stubBackend struct {
	calls  []api.ProfileUpdate
	userID string
	image  []byte
	reply  models.AccountUser
	err    error
}

func (b *stubBackend) UpdateProfile(ctx context.Context, userID string, upd api.ProfileUpdate) (*models.AccountUser, error) {
	b.userID = userID
	b.calls = append(b.calls, upd)
	if upd.Image != nil && upd.Image.Reader != nil {
		b.image, _ = io.ReadAll(upd.Image.Reader)
	}
	if b.err != nil {
		return nil, b.err
	}
	u := b.reply
	return &u, nil
}

func (b *stubBackend) BaseURL() string { return "http://linkup.test" }

func signedIn(t *testing.T) securestore.Store {
	t.Helper()
	store := securestore.NewMemoryStore()
	store.Set(securestore.KeyAccessToken, "tok")
	securestore.SaveUser(store, &models.AccountUser{ID: "7", Username: "alice", FullName: "Alice", ProfileImage: "http://linkup.test/media/old.png"})
	return store
}

func TestUpdateNameKeepsImage(t *testing.T) {
	b := &stubBackend{reply: models.AccountUser{ID: "7", Username: "alice", FullName: "Alice Park"}}
	store := signedIn(t)
	e := NewEditor(b, store, nil)

	u, err := e.UpdateName(context.Background(), "  Alice Park ")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if b.userID != "7" || *b.calls[0].FullName != "Alice Park" {
		t.Errorf("request = %s %+v", b.userID, b.calls[0])
	}
	if u.ProfileImage != "http://linkup.test/media/old.png" {
		t.Errorf("image = %q", u.ProfileImage)
	}
	stored, _ := securestore.LoadUser(store)
	if stored.FullName != "Alice Park" {
		t.Errorf("stored user = %+v", stored)
	}
}

func TestUpdateNameRejectsBlank(t *testing.T) {
	b := &stubBackend{}
	e := NewEditor(b, signedIn(t), nil)
	if _, err := e.UpdateName(context.Background(), "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("UpdateName = %v, want ErrEmptyName", err)
	}
	if len(b.calls) != 0 {
		t.Errorf("backend called for blank name")
	}
}

func TestRequiresSignIn(t *testing.T) {
	e := NewEditor(&stubBackend{}, securestore.NewMemoryStore(), nil)
	if _, err := e.UpdateStatus(context.Background(), "Busy"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateStatus = %v, want ErrNotAuthenticated", err)
	}
}

func TestUpdateImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.jpg")
	if err := os.WriteFile(path, []byte("JPEG"), 0o600); err != nil {
		t.Fatal(err)
	}
	b := &stubBackend{reply: models.AccountUser{ID: "7", Username: "alice", ProfileImage: "/media/me.jpg"}}
	store := signedIn(t)
	e := NewEditor(b, store, nil)

	u, err := e.UpdateImage(context.Background(), path)
	if err != nil {
		t.Fatalf("UpdateImage: %v", err)
	}
	if string(b.image) != "JPEG" || b.calls[0].Image.Filename != "me.jpg" {
		t.Errorf("upload = %s %q", b.calls[0].Image.Filename, b.image)
	}
	if u.ProfileImage != "http://linkup.test/media/me.jpg" {
		t.Errorf("image = %q", u.ProfileImage)
	}
	if v, _ := store.Get(securestore.KeyProfileImage); v != path {
		t.Errorf("userProfileImage = %q", v)
	}
}

func TestRemoveImage(t *testing.T) {
	b := &stubBackend{reply: models.AccountUser{ID: "7", Username: "alice"}}
	store := signedIn(t)
	store.Set(securestore.KeyProfileImage, "/tmp/me.jpg")
	e := NewEditor(b, store, nil)

	u, err := e.RemoveImage(context.Background())
	if err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	if img := b.calls[0].Image; img == nil || img.Reader != nil {
		t.Errorf("expected clearing upload, got %+v", img)
	}
	if u.ProfileImage != "" {
		t.Errorf("image = %q", u.ProfileImage)
	}
	if _, err := store.Get(securestore.KeyProfileImage); !errors.Is(err, securestore.ErrNotFound) {
		t.Errorf("userProfileImage still stored")
	}
}

func TestFailedUpdateKeepsStoredUser(t *testing.T) {
	b := &stubBackend{err: &api.Error{Status: 400}}
	store := signedIn(t)
	e := NewEditor(b, store, nil)

	if _, err := e.UpdateStatus(context.Background(), "Away"); !api.IsStatus(err, 400) {
		t.Fatalf("UpdateStatus = %v", err)
	}
	u, _ := e.Current()
	if u.FullName != "Alice" {
		t.Errorf("stored user changed: %+v", u)
	}
}
