package services

import (
	"context"
	"strings"
	"time"

	"github.com/docvault/docvault/internal/content"
	"github.com/docvault/docvault/internal/models"
	pgrepo "github.com/docvault/docvault/internal/repositories/postgres"
	"github.com/docvault/docvault/internal/utils"
)

// SearchResult is the unified result shape for both roles; OwnerUsername is
// only populated for recruiter searches.
type SearchResult struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	LatestFilePath string    `json:"latest_file_path"`
	CreatedAt      time.Time `json:"created_at"`
	OwnerUsername  string    `json:"owner_username,omitempty"`
}

type SearchService interface {
	// Search matches query against document metadata, or against extracted
	// file content when searchContent is set. Applicants search their own
	// documents; recruiters search applicant-owned documents.
	Search(ctx context.Context, viewer *models.User, query string, searchContent bool, skip, limit int) ([]SearchResult, error)
}

type searchService struct {
	docs    pgrepo.DocumentRepository
	extract *content.Extractor
}

func NewSearchService(docs pgrepo.DocumentRepository, extract *content.Extractor) SearchService {
	return &searchService{docs: docs, extract: extract}
}

func (s *searchService) Search(ctx context.Context, viewer *models.User, query string, searchContent bool, skip, limit int) ([]SearchResult, error) {
	const op = "SearchService.Search"

	if strings.TrimSpace(query) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query is required", nil)
	}
	if !models.ValidRole(viewer.Role) {
		return nil, utils.E(utils.CodeForbidden, op, "role not permitted to search", nil)
	}

	if searchContent {
		return s.searchContent(ctx, op, viewer, query, skip, limit)
	}
	return s.searchMetadata(ctx, op, viewer, query, skip, limit)
}

// searchMetadata pushes the case-insensitive substring match and pagination
// down to SQL; results come back ordered by title.
func (s *searchService) searchMetadata(ctx context.Context, op string, viewer *models.User, query string, skip, limit int) ([]SearchResult, error) {
	if viewer.Role == models.RoleRecruiter {
		rows, err := s.docs.SearchRoleMetadata(ctx, models.RoleApplicant, query, skip, limit)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "metadata search failed", err)
		}
		return fromOwnerRows(rows), nil
	}

	rows, err := s.docs.SearchOwnedMetadata(ctx, viewer.ID, query, skip, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "metadata search failed", err)
	}
	return fromDocuments(rows), nil
}

// searchContent fetches every visible document ordered by creation time
// descending, filters on the extracted text of each latest file, and only
// then applies pagination. Candidates whose files cannot be read simply do
// not match.
func (s *searchService) searchContent(ctx context.Context, op string, viewer *models.User, query string, skip, limit int) ([]SearchResult, error) {
	var candidates []SearchResult
	if viewer.Role == models.RoleRecruiter {
		rows, err := s.docs.ListByOwnerRole(ctx, models.RoleApplicant, 0, -1)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "content search failed", err)
		}
		candidates = fromOwnerRows(rows)
	} else {
		rows, err := s.docs.ListByOwner(ctx, viewer.ID, 0, -1)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "content search failed", err)
		}
		candidates = fromDocuments(rows)
	}

	needle := strings.ToLower(query)
	matched := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		text := s.extract.Text(ctx, c.LatestFilePath)
		if text == "" {
			continue
		}
		if strings.Contains(strings.ToLower(text), needle) {
			matched = append(matched, c)
		}
	}
	return paginate(matched, skip, limit), nil
}

func fromDocuments(rows []models.Document) []SearchResult {
	out := make([]SearchResult, 0, len(rows))
	for _, d := range rows {
		out = append(out, SearchResult{
			ID:             d.ID,
			Title:          d.Title,
			Description:    d.Description,
			LatestFilePath: d.LatestFilePath,
			CreatedAt:      d.CreatedAt,
		})
	}
	return out
}

func fromOwnerRows(rows []models.DocumentWithOwner) []SearchResult {
	out := make([]SearchResult, 0, len(rows))
	for _, d := range rows {
		out = append(out, SearchResult{
			ID:             d.ID,
			Title:          d.Title,
			Description:    d.Description,
			LatestFilePath: d.LatestFilePath,
			CreatedAt:      d.CreatedAt,
			OwnerUsername:  d.OwnerUsername,
		})
	}
	return out
}

func paginate(results []SearchResult, skip, limit int) []SearchResult {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(results) {
		return []SearchResult{}
	}
	end := len(results)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return results[skip:end]
}
