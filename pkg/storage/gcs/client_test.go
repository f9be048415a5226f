package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		httpClient:    srv.Client(),
		bucket:        "catalog-media",
		publicBaseURL: "https://cdn.example.com",
		apiBase:       srv.URL,
		tokens:        staticToken("tok"),
	}
}

func TestUploadSendsMediaRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload/storage/v1/b/catalog-media/o" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("uploadType") != "media" || r.URL.Query().Get("name") != "media/a b.png" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer tok" || r.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected headers %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"bucket":      "catalog-media",
			"name":        "media/a b.png",
			"contentType": "image/png",
			"size":        "4",
			"echo":        string(body),
		})
	})

	obj, err := client.Upload(context.Background(), "media/a b.png", "image/png", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if obj.Name != "media/a b.png" || obj.Size != 4 {
		t.Fatalf("unexpected object %+v", obj)
	}
	if got := client.PublicURL(obj.Name); got != "https://cdn.example.com/catalog-media/media/a%20b.png" {
		t.Fatalf("unexpected public url %s", got)
	}
}

func TestDeleteStatuses(t *testing.T) {
	t.Parallel()

	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusNoContent)
		case 2:
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
		}
	})

	ctx := context.Background()
	if err := client.Delete(ctx, "media/x.png"); err != nil {
		t.Fatalf("expected delete success, got %v", err)
	}
	if err := client.Delete(ctx, "media/x.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err := client.Delete(ctx, "media/x.png")
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected forbidden error with body, got %v", err)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/b/catalog-media/o" || r.URL.Query().Get("maxResults") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var nilClient *Client
	if err := nilClient.Ping(context.Background()); err == nil {
		t.Fatal("expected nil client ping to fail")
	}
}

func TestSignAssertion(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	now := time.Now()
	signed, err := signAssertion("signer@example.com", tokenEndpoint, key, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(tok *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithAudience(tokenEndpoint))
	if err != nil || !parsed.Valid {
		t.Fatalf("verify assertion: %v", err)
	}
	if claims["iss"] != "signer@example.com" || claims["scope"] != scope {
		t.Fatalf("unexpected claims %v", claims)
	}
}

func TestServiceAccountTokenSourceExchangesAssertion(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	var exchanges int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		if err := r.ParseForm(); err != nil || r.Form.Get("assertion") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":3600}`))
	}))
	defer srv.Close()

	creds, _ := json.Marshal(serviceAccount{ClientEmail: "svc@example.com", PrivateKey: string(pemKey), TokenURI: srv.URL})
	ts, err := newServiceAccountTokenSource(srv.Client(), creds)
	if err != nil {
		t.Fatalf("token source: %v", err)
	}
	for i := 0; i < 2; i++ {
		tok, err := ts.Token(context.Background())
		if err != nil || tok != "abc" {
			t.Fatalf("unexpected token %q %v", tok, err)
		}
	}
	if atomic.LoadInt32(&exchanges) != 1 {
		t.Fatalf("expected cached token after first exchange, got %d exchanges", exchanges)
	}

	if _, err := newServiceAccountTokenSource(srv.Client(), []byte(`{"client_email":""}`)); err == nil {
		t.Fatal("expected invalid credentials to fail")
	}
}
