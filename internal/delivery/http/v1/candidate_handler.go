package v1

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go-candidate-tracker/internal/delivery/http/response"
	"go-candidate-tracker/internal/domain"
	"go-candidate-tracker/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, upload gin.HandlerFunc, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	candidates := r.Group("/candidates")
	{
		candidates.GET("", handler.List)
		candidates.GET("/search", handler.Search)
		candidates.GET("/:id", handler.Get)
		candidates.POST("", upload, handler.Create)
		candidates.PATCH("/:id", upload, handler.Update)
		candidates.PUT("/:id/status", handler.UpdateStatus)
		candidates.DELETE("/:id", handler.Delete)
	}
}

func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidateUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates", candidates)
}

func (h *CandidateHandler) Search(c *gin.Context) {
	candidates, err := h.candidateUC.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Search results", candidates)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidateUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate", candidate)
}

// Create accepts either a JSON body or a multipart form carrying an
// optional resume_file. With a file the upload runs first; the record is
// never created when the upload fails.
func (h *CandidateHandler) Create(c *gin.Context) {
	var in domain.CandidateInsert
	var resume *domain.ResumeFile

	if isMultipart(c) {
		in = domain.CandidateInsert{
			FullName:        c.PostForm("full_name"),
			AppliedPosition: c.PostForm("applied_position"),
			Status:          domain.CandidateStatus(c.PostForm("status")),
			ResumeURL:       c.PostForm("resume_url"),
		}

		file, closeFile, err := formResume(c)
		if err != nil {
			c.Error(err)
			return
		}
		if file != nil {
			defer closeFile()
			resume = file
		}
	} else {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.Error(apperror.Validation("Invalid request body"))
			return
		}
	}

	candidate, err := h.candidateUC.Create(c.Request.Context(), in, resume)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidate added successfully", candidate)
}

type updateCandidateRequest struct {
	FullName        *string    `json:"full_name"`
	AppliedPosition *string    `json:"applied_position"`
	CreatedAt       *time.Time `json:"created_at"`
}

func (h *CandidateHandler) Update(c *gin.Context) {
	var in domain.CandidateUpdate

	if isMultipart(c) {
		if v, ok := c.GetPostForm("full_name"); ok {
			in.FullName = &v
		}
		if v, ok := c.GetPostForm("applied_position"); ok {
			in.AppliedPosition = &v
		}
		if v, ok := c.GetPostForm("created_at"); ok {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.Error(apperror.Validation("created_at must be an RFC3339 timestamp"))
				return
			}
			in.CreatedAt = &t
		}

		file, closeFile, err := formResume(c)
		if err != nil {
			c.Error(err)
			return
		}
		if file != nil {
			defer closeFile()
			in.Resume = file
		}
	} else {
		var req updateCandidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.Validation("Invalid request body"))
			return
		}
		in.FullName = req.FullName
		in.AppliedPosition = req.AppliedPosition
		in.CreatedAt = req.CreatedAt
	}

	candidate, err := h.candidateUC.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate updated successfully", candidate)
}

type updateStatusRequest struct {
	Status domain.CandidateStatus `json:"status"`
}

func (h *CandidateHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	candidate, err := h.candidateUC.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", candidate)
}

// Delete reports success even when the candidate was already gone; the
// operation is a no-op in that case.
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted", nil)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formResume pulls the optional resume_file part out of a multipart form.
// Name, content type and size all come from the client and are validated
// downstream by the resume store.
func formResume(c *gin.Context) (*domain.ResumeFile, func(), error) {
	header, err := c.FormFile("resume_file")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, apperror.Validation("invalid resume_file upload")
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, apperror.Validation("could not read resume_file upload")
	}

	return &domain.ResumeFile{
		Name:        header.Filename,
		ContentType: contentType(header),
		Size:        header.Size,
		Content:     f,
	}, func() { f.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	// Strip parameters like "; charset=..." before the media type check.
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
