package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/neacloud/internal/infrastructure/config"
)

const (
	testEmail    = "user@example.test"
	testPassword = "hunter2"
)

// cloudStub fakes the accounts and API hosts on one httptest server.
type cloudStub struct {
	challenge   string // code_challenge captured from the authz request
	refreshFail bool
}

func (s *cloudStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/authz-srv/authz", func(w http.ResponseWriter, r *http.Request) {
		s.challenge = r.URL.Query().Get("code_challenge")
		if s.challenge == "" || r.URL.Query().Get("code_challenge_method") != "S256" {
			http.Error(w, "missing challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Location", "/rehau-ui/login?requestId=req-1&view_type=login")
		w.WriteHeader(http.StatusFound)
	})

	mux.HandleFunc("/login-srv/login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("requestId") != "req-1" {
			http.Error(w, "bad request id", http.StatusBadRequest)
			return
		}
		if r.PostFormValue("username") != testEmail || r.PostFormValue("password") != testPassword {
			// Wrong credentials render the login page again, no redirect.
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Location", "http://localhost:3000/?code=code-1")
		w.WriteHeader(http.StatusFound)
	})

	mux.HandleFunc("/token-srv/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		switch r.PostFormValue("grant_type") {
		case "authorization_code":
			if r.PostFormValue("code") != "code-1" {
				http.Error(w, "bad code", http.StatusUnauthorized)
				return
			}
			verifier := r.PostFormValue("code_verifier")
			digest := sha256.Sum256([]byte(verifier))
			if base64.RawURLEncoding.EncodeToString(digest[:]) != s.challenge {
				http.Error(w, "verifier does not match challenge", http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600}`)
		case "refresh_token":
			if s.refreshFail {
				http.Error(w, "refresh token revoked", http.StatusUnauthorized)
				return
			}
			if r.PostFormValue("refresh_token") != "rt-1" || r.PostFormValue("client_secret") == "" {
				http.Error(w, "bad refresh", http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `{"access_token":"at-2","refresh_token":"rt-2","expires_in":3600}`)
		default:
			http.Error(w, "bad grant", http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if strings.HasSuffix(r.URL.Path, "/getUserData") {
			if authz != "Bearer at-1" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		} else if authz == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":{"user":{"defaultInstall":"i1","installs":[{"_id":"id1","unique":"i1","hash":"h1"}]}}}`)
	})

	return mux
}

func testClient(t *testing.T, stub *cloudStub) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	return NewClient(config.CloudConfig{
		AccountsBaseURL: srv.URL,
		APIBaseURL:      srv.URL,
		ClientID:        "client-1",
		ClientSecret:    "secret-1",
		Scopes:          "email roles profile offline_access",
		RedirectURI:     "http://localhost:3000/#!/auth-code",
		HTTPTimeout:     5 * time.Second,
	}), srv
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLogin(t *testing.T) {
	client, _ := testClient(t, &cloudStub{})

	token, profile, err := client.Login(context.Background(), testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token.AccessToken != "at-1" || token.RefreshToken != "rt-1" {
		t.Errorf("token = %+v", token)
	}
	if token.IssuedAt.IsZero() {
		t.Error("IssuedAt not set")
	}
	if profile.DefaultInstall != "i1" {
		t.Errorf("DefaultInstall = %q, want i1", profile.DefaultInstall)
	}
	if ids := profile.InstallIDs(); len(ids) != 1 || ids[0] != "id1" {
		t.Errorf("InstallIDs() = %v", ids)
	}
}

func TestLoginBadPassword(t *testing.T) {
	client, _ := testClient(t, &cloudStub{})

	_, _, err := client.Login(context.Background(), testEmail, "wrong")
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("Login() error = %v, want ErrAuthentication", err)
	}
}

func TestLoginTransportFailure(t *testing.T) {
	stub := &cloudStub{}
	client, srv := testClient(t, stub)
	srv.Close()

	_, _, err := client.Login(context.Background(), testEmail, testPassword)
	if !errors.Is(err, ErrCommunication) {
		t.Errorf("Login() error = %v, want ErrCommunication", err)
	}
}

func TestLoginMissingRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/rehau-ui/login?view_type=login")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	client := NewClient(config.CloudConfig{
		AccountsBaseURL: srv.URL,
		APIBaseURL:      srv.URL,
		ClientID:        "client-1",
		RedirectURI:     "http://localhost:3000/#!/auth-code",
	})

	_, _, err := client.Login(context.Background(), testEmail, testPassword)
	if !errors.Is(err, ErrProtocol) {
		t.Errorf("Login() error = %v, want ErrProtocol", err)
	}
}

// =============================================================================
// CheckCredentials Tests
// =============================================================================

func TestCheckCredentials(t *testing.T) {
	client, _ := testClient(t, &cloudStub{})

	ok, err := client.CheckCredentials(context.Background(), testEmail, testPassword)
	if err != nil || !ok {
		t.Errorf("CheckCredentials() = %v, %v, want true, nil", ok, err)
	}

	ok, err = client.CheckCredentials(context.Background(), testEmail, "wrong")
	if err != nil {
		t.Errorf("CheckCredentials() error = %v, want nil for plain rejection", err)
	}
	if ok {
		t.Error("CheckCredentials() = true for wrong password")
	}
}

func TestCheckCredentialsTransportFailure(t *testing.T) {
	stub := &cloudStub{}
	client, srv := testClient(t, stub)
	srv.Close()

	if _, err := client.CheckCredentials(context.Background(), testEmail, testPassword); !errors.Is(err, ErrCommunication) {
		t.Errorf("CheckCredentials() error = %v, want ErrCommunication", err)
	}
}

// =============================================================================
// Refresh Tests
// =============================================================================

func TestRefresh(t *testing.T) {
	client, _ := testClient(t, &cloudStub{})

	token, err := client.Refresh(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if token.AccessToken != "at-2" || token.RefreshToken != "rt-2" {
		t.Errorf("token = %+v", token)
	}
}

func TestRefreshRejected(t *testing.T) {
	client, _ := testClient(t, &cloudStub{refreshFail: true})

	_, err := client.Refresh(context.Background(), "rt-1")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("Refresh() error = %v, want ErrAuthentication", err)
	}
	// Diagnostics carry status and body.
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "revoked") {
		t.Errorf("Refresh() error lacks diagnostics: %v", err)
	}
}

// =============================================================================
// Profile Read Tests
// =============================================================================

func TestReadUserState(t *testing.T) {
	client, _ := testClient(t, &cloudStub{})

	profile, err := client.ReadUserState(context.Background(), ReadUserRequest{
		Username:    testEmail,
		Demand:      "id1",
		InstallIDs:  []string{"id1"},
		InstallHash: "h1",
		AccessToken: "at-1",
	})
	if err != nil {
		t.Fatalf("ReadUserState() error = %v", err)
	}
	if len(profile.Installs) != 1 {
		t.Errorf("Installs = %v", profile.Installs)
	}
	if _, ok := profile.Install("i1"); !ok {
		t.Error("Install(i1) not found")
	}
}
