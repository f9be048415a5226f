package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
)

func TestResolveTarget(t *testing.T) {
	gcp := config.GCPConfig{ProjectID: " proj "}
	bq := config.BigQueryConfig{Dataset: "catalog", ViewsTable: " product_views "}

	got, err := resolveTarget(gcp, bq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (target{project: "proj", dataset: "catalog", table: "product_views"}) {
		t.Fatalf("unexpected target %+v", got)
	}

	cases := map[string]func() (config.GCPConfig, config.BigQueryConfig){
		"project": func() (config.GCPConfig, config.BigQueryConfig) { return config.GCPConfig{}, bq },
		"dataset": func() (config.GCPConfig, config.BigQueryConfig) {
			return gcp, config.BigQueryConfig{ViewsTable: "v"}
		},
		"table": func() (config.GCPConfig, config.BigQueryConfig) {
			return gcp, config.BigQueryConfig{Dataset: "catalog"}
		},
	}
	for name, build := range cases {
		if _, err := resolveTarget(build()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestCredentials(t *testing.T) {
	if n := len(credentials(config.GCPConfig{CredentialsJSON: `{"a":1}`, ApplicationCredentials: "/tmp/creds"})); n != 1 {
		t.Fatalf("expected json credentials only, got %d options", n)
	}
	if n := len(credentials(config.GCPConfig{ApplicationCredentials: "/tmp/creds"})); n != 1 {
		t.Fatalf("expected file credentials, got %d options", n)
	}
	if n := len(credentials(config.GCPConfig{})); n != 0 {
		t.Fatalf("expected default credentials, got %d options", n)
	}
}

func TestNotFound(t *testing.T) {
	if !notFound(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusNotFound})) {
		t.Fatal("expected wrapped 404 to be not found")
	}
	if notFound(&googleapi.Error{Code: http.StatusForbidden}) || notFound(errors.New("x")) {
		t.Fatal("only 404 is not found")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if err := c.InsertViews(context.Background(), ViewRow{ProductID: "p"}); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized, got %v", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
