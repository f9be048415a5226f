package media

import (
	"context"
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/pagination"
)

// ListParams configures media listing filters and pagination.
type ListParams struct {
	Kind   enums.MediaKind
	Search string
	Limit  int
	Cursor string
}

type ListResult struct {
	Items      []AssetDTO `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Kind != "" && !params.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	limit = pagination.NormalizeLimit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, listQuery{
		kind:   params.Kind,
		search: strings.ToLower(strings.TrimSpace(params.Search)),
		cursor: cursor,
		limit:  limit + 1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	rows, hasMore := pagination.Trim(rows, limit)

	result := &ListResult{Items: make([]AssetDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *newAssetDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}
