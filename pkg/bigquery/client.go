// Package bigquery streams storefront product views into a BigQuery table.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

var errNotInitialized = errors.New("bigquery client not initialized")

// ViewRow is one storefront product view.
type ViewRow struct {
	ProductID   string    `bigquery:"product_id"`
	Slug        string    `bigquery:"slug"`
	VisitorHash string    `bigquery:"visitor_hash"`
	Referrer    string    `bigquery:"referrer"`
	ViewedAt    time.Time `bigquery:"viewed_at"`
}

// Client is bound to a single views table.
type Client struct {
	bq    *bigquery.Client
	table *bigquery.Table
}

// NewClient connects and fails fast when the dataset or table is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	target, err := resolveTarget(gcp, cfg)
	if err != nil {
		return nil, err
	}

	bq, err := bigquery.NewClient(ctx, target.project, credentials(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	c := &Client{bq: bq, table: bq.Dataset(target.dataset).Table(target.table)}
	if err := c.Ping(ctx); err != nil {
		_ = bq.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dataset": target.dataset, "table": target.table}), "bigquery view sink ready")
	}
	return c, nil
}

type target struct {
	project string
	dataset string
	table   string
}

func resolveTarget(gcp config.GCPConfig, cfg config.BigQueryConfig) (target, error) {
	t := target{
		project: strings.TrimSpace(gcp.ProjectID),
		dataset: strings.TrimSpace(cfg.Dataset),
		table:   strings.TrimSpace(cfg.ViewsTable),
	}
	switch {
	case t.project == "":
		return t, errors.New("gcp project id is required")
	case t.dataset == "":
		return t, errors.New("bigquery dataset is required")
	case t.table == "":
		return t, errors.New("bigquery views table is required")
	}
	return t, nil
}

// credentials prefers inline JSON over a credentials file. With neither,
// application default credentials apply.
func credentials(gcp config.GCPConfig) []option.ClientOption {
	if strings.TrimSpace(gcp.CredentialsJSON) != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	}
	if strings.TrimSpace(gcp.ApplicationCredentials) != "" {
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

// Ping checks that the views table is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.table == nil {
		return errNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := c.table.Metadata(ctx); err != nil {
		if notFound(err) {
			return fmt.Errorf("table %s.%s does not exist", c.table.DatasetID, c.table.TableID)
		}
		return fmt.Errorf("checking table %s.%s: %w", c.table.DatasetID, c.table.TableID, err)
	}
	return nil
}

func (c *Client) InsertViews(ctx context.Context, rows ...ViewRow) error {
	if c == nil || c.table == nil {
		return errNotInitialized
	}
	if len(rows) == 0 {
		return nil
	}
	if err := c.table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("insert into %s: %w", c.table.TableID, err)
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.bq == nil {
		return nil
	}
	return c.bq.Close()
}

func notFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
