package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/stargraph/pkg/integrations"
)

func testOAuth(t *testing.T, h http.HandlerFunc) *OAuthClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewOAuthClient(OAuthConfig{})
	c.loginURL = srv.URL
	c.httpClient = srv.Client()
	return c
}

func TestRequestDeviceCode(t *testing.T) {
	c := testOAuth(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/device/code" {
			t.Errorf("path = %s", r.URL.Path)
		}
		r.ParseForm()
		if r.Form.Get("client_id") != DefaultClientID || r.Form.Get("scope") != deviceScope {
			t.Errorf("form = %v", r.Form)
		}
		w.Write([]byte(`{"device_code":"dc","user_code":"ABCD-1234","verification_uri":"https://github.com/login/device","expires_in":900,"interval":5}`))
	})
	resp, err := c.RequestDeviceCode(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if resp.UserCode != "ABCD-1234" || resp.Interval != 5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestPollForToken(t *testing.T) {
	var polls atomic.Int32
	c := testOAuth(t, func(w http.ResponseWriter, r *http.Request) {
		switch polls.Add(1) {
		case 1:
			w.Write([]byte(`{"error":"authorization_pending"}`))
		default:
			w.Write([]byte(`{"access_token":"gho_x","token_type":"bearer","scope":"read:user"}`))
		}
	})
	tok, err := c.poll(context.Background(), "dc", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "gho_x" || polls.Load() != 2 {
		t.Errorf("token = %+v after %d polls", tok, polls.Load())
	}
}

func TestPollForTokenDenied(t *testing.T) {
	c := testOAuth(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"access_denied","error_description":"The user has denied your application access."}`))
	})
	_, err := c.poll(context.Background(), "dc", time.Millisecond)
	if !errors.Is(err, integrations.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestPollForTokenCancelled(t *testing.T) {
	c := testOAuth(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"authorization_pending"}`))
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.poll(ctx, "dc", time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
