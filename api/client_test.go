package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"linkup/securestore"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *securestore.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := securestore.NewMemoryStore()
	store.Set(securestore.KeyAccessToken, "tok-1")
	return NewClient(srv.URL, "ws"+strings.TrimPrefix(srv.URL, "http"), store), store
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username_or_email_or_phone"] != "alice" || body["password"] != "secret1" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"tokens":{"access":"a1","refresh":"r1"},"user":{"id":7,"username":"alice","email":"a@x.io","full_name":"Alice"}}`))
	}))

	res, err := c.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Tokens.Access != "a1" || res.User.ID != "7" || res.User.FullName != "Alice" {
		t.Errorf("response = %+v", res)
	}
}

func TestErrorDetail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login/":
			http.Error(w, `{"detail":"Invalid credentials"}`, http.StatusUnauthorized)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))

	_, err := c.Login(context.Background(), "alice", "nope")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login err = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Detail != "Invalid credentials" {
		t.Errorf("err = %+v", apiErr)
	}

	_, err = c.GetAllUsers(context.Background())
	if !IsStatus(err, http.StatusInternalServerError) {
		t.Errorf("GetAllUsers err = %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("plain text detail lost: %v", err)
	}
}

func TestBearerTokenSent(t *testing.T) {
	var auth []string
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))

	c.GetAllUsers(context.Background())
	store.Set(securestore.KeyAccessToken, "tok-2")
	c.GetAllUsers(context.Background())

	if len(auth) != 2 || auth[0] != "Bearer tok-1" || auth[1] != "Bearer tok-2" {
		t.Errorf("Authorization headers = %v", auth)
	}
}

func TestResolvePeerFallsBackToAllUsers(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/get/all/":
			w.Write([]byte(`[{"id":1,"username":"alice"},{"id":2,"username":"bob","profile_image":"/media/bob.png"}]`))
		default:
			http.NotFound(w, r)
		}
	}))

	peer, err := c.ResolvePeer(context.Background(), "2")
	if err != nil {
		t.Fatalf("ResolvePeer: %v", err)
	}
	if peer.Username != "bob" || peer.Name != "bob" || peer.Status != "Available" || peer.IsFriend != "False" {
		t.Errorf("peer = %+v", peer)
	}
	if peer.Avatar != c.BaseURL()+"/media/bob.png" {
		t.Errorf("avatar = %q", peer.Avatar)
	}

	if _, err := c.ResolvePeer(context.Background(), "3"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ResolvePeer(3) = %v, want ErrUserNotFound", err)
	}
}

func TestResolvePeerDirect(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/get/2/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":2,"username":"bob","full_name":"Bob Stone","status":"Busy","is_friend":"True"}`))
	}))

	peer, err := c.ResolvePeer(context.Background(), "2")
	if err != nil {
		t.Fatalf("ResolvePeer: %v", err)
	}
	if peer.Name != "Bob Stone" || peer.Status != "Busy" || peer.IsFriend != "True" {
		t.Errorf("peer = %+v", peer)
	}
}

func TestSendMessageMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/api/chat/send/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if r.FormValue("receiver_username") != "bob" || r.FormValue("content") != "hi" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		file, hdr, err := r.FormFile("media")
		if err != nil {
			t.Errorf("media part: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		if hdr.Filename != "cat.png" || string(data) != "PNG" {
			t.Errorf("media = %s %q", hdr.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":55,"content":"hi","media_url":"/media/cat.png","sent_at":"2024-05-01T10:00:00Z"}}`))
	}))

	sent, err := c.SendMessage(context.Background(), SendRequest{
		Receiver: "bob",
		Content:  "hi",
		Media:    &Upload{Filename: "cat.png", Reader: strings.NewReader("PNG")},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if sent.ID != "55" || sent.MediaURL == nil || *sent.MediaURL != "/media/cat.png" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestChatHistoryAcceptsBothShapes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/api/chat/history/bob/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":1,"sender":"bob","content":"hey","sent_at":"2024-05-01T10:00:00Z"},
			{"id":"m-2","from_user":"alice","message":"yo","timestamp":"2024-05-01T10:01:00Z","media_url":null}
		]`))
	}))

	hist, err := c.ChatHistory(context.Background(), "bob")
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(hist) != 2 || hist[0].ID != "1" || hist[1].ID != "m-2" || hist[1].FromUser != "alice" {
		t.Errorf("history = %+v", hist)
	}
}

func TestUpdateProfileClearsImage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/users/7/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		r.ParseMultipartForm(1 << 20)
		if _, ok := r.MultipartForm.Value["profile_image"]; !ok {
			t.Errorf("profile_image field missing")
		}
		if _, ok := r.MultipartForm.Value["full_name"]; ok {
			t.Errorf("unexpected full_name field")
		}
		w.Write([]byte(`{"id":7,"username":"alice","full_name":"Alice","profile_image":""}`))
	}))

	u, err := c.UpdateProfile(context.Background(), "7", ProfileUpdate{Image: &Upload{}})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.ProfileImage != "" {
		t.Errorf("image = %q", u.ProfileImage)
	}
}

func TestFriendRequestEndpoints(t *testing.T) {
	var calls []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, r.Method+" "+r.URL.Path+" "+strings.TrimSpace(string(body)))
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"id":3,"from_user":"bob","from_user_id":2,"to_user":"alice","status":"pending","created_at":"2024-05-01T10:00:00Z"}]`))
		}
	}))
	ctx := context.Background()

	reqs, err := c.ListFriendRequests(ctx)
	if err != nil || len(reqs) != 1 || reqs[0].ID != "3" {
		t.Fatalf("ListFriendRequests = %+v, %v", reqs, err)
	}
	c.SendFriendRequest(ctx, "2")
	c.RespondFriendRequest(ctx, "3", "accept")
	c.CancelFriendRequest(ctx, "4")

	want := []string{
		"GET /users/friend-requests/ ",
		`POST /users/friend-requests/ {"to_user":"2"}`,
		`PUT /users/friend-requests/3/ {"action":"accept"}`,
		"POST /users/friend-requests/4/cancel/ ",
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %q", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestChatSocketURL(t *testing.T) {
	c := NewClient("https://api.linkup.test", "wss://api.linkup.test/", securestore.NewMemoryStore())
	got := c.ChatSocketURL("alice", "a b+c")
	want := "wss://api.linkup.test/ws/chat/alice/?token=a+b%2Bc"
	if got != want {
		t.Errorf("ChatSocketURL = %q, want %q", got, want)
	}
}
