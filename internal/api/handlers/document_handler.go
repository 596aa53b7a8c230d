package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/services"
	"github.com/docvault/docvault/internal/utils"
)

type DocumentHandler struct {
	docs   services.DocumentService
	search services.SearchService
}

func NewDocumentHandler(docs services.DocumentService, search services.SearchService) *DocumentHandler {
	return &DocumentHandler{docs: docs, search: search}
}

// Upload accepts multipart form data: a required "file" part and an
// optional "description" field. A file whose sanitized name matches an
// existing document becomes its next version.
func (h *DocumentHandler) Upload(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "DocumentHandler.Upload", "missing multipart field 'file'", err))
		return
	}

	var description *string
	if v, present := c.GetPostForm("description"); present {
		description = &v
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "DocumentHandler.Upload", "failed to open upload", err))
		return
	}
	defer f.Close()

	res, err := h.docs.Upload(c.Request.Context(), user, fh.Filename, description, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ListMine returns the caller's own documents, newest first.
func (h *DocumentHandler) ListMine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}

	rows, err := h.docs.ListOwned(c.Request.Context(), user.ID, skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListApplicant returns applicant-owned documents with owner usernames,
// for recruiters.
func (h *DocumentHandler) ListApplicant(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}

	rows, err := h.docs.ListApplicantDocuments(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *DocumentHandler) Search(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	searchContent := false
	if raw := c.Query("search_content"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "DocumentHandler.Search", "invalid search_content parameter", err))
			return
		}
		searchContent = v
	}

	results, err := h.search.Search(c.Request.Context(), user, c.Query("query"), searchContent, skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *DocumentHandler) Versions(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	docID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.docs.Versions(c.Request.Context(), user, docID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	docID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	version, ok := intParam(c, "version")
	if !ok {
		return
	}

	info, err := h.docs.Download(c.Request.Context(), user, docID, version)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", info.ContentType)
	c.FileAttachment(info.AbsPath, info.Filename)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "Params", "invalid "+name+" parameter", err))
		return 0, false
	}
	return uint(v), true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "Params", "invalid "+name+" parameter", err))
		return 0, false
	}
	return v, true
}
