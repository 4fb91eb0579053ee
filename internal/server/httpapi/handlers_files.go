package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/server/services"
)

// multipartOverhead covers the boundary and part headers around the file
// bytes when capping the request body.
const multipartOverhead = 10 << 10

func (s *Server) handleUpload(c *gin.Context) {
	user := currentUser(c)

	// Cap the body before multipart parsing buffers it; FormFile spools
	// anything past 32 MiB to temp files.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadSizeBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Code:    "file_too_large",
				Message: "Uploaded file exceeds the size limit",
			})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "validation_error",
			Message: "file field is required",
		})
		return
	}
	defer file.Close()

	// Read one byte past the limit so the service can tell oversize from
	// exactly-at-limit.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadSizeBytes+1))
	if err != nil {
		c.Error(err)
		abortInternal(c)
		return
	}

	asset, err := s.files.Upload(c.Request.Context(), user.ID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorEmptyFile):
			c.JSON(http.StatusBadRequest, errorResponse{
				Code:    "file_empty",
				Message: "Uploaded file is empty",
			})
		case errors.Is(err, common.ErrorFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Code:    "file_too_large",
				Message: "Uploaded file exceeds the size limit",
			})
		default:
			c.Error(err)
			abortInternal(c)
		}
		return
	}

	c.JSON(http.StatusCreated, toFileResponse(asset))
}

func (s *Server) handleListFiles(c *gin.Context) {
	user := currentUser(c)

	params, ok := parseListParams(c)
	if !ok {
		return
	}

	total, items, err := s.files.List(c.Request.Context(), user.ID, params)
	if err != nil {
		c.Error(err)
		abortInternal(c)
		return
	}

	c.JSON(http.StatusOK, toFileListResponse(total, items))
}

func parseListParams(c *gin.Context) (services.ListParams, bool) {
	var params services.ListParams

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badQueryParam(c, "limit")
			return params, false
		}
		params.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badQueryParam(c, "offset")
			return params, false
		}
		params.Offset = n
	}
	switch c.DefaultQuery("sort", "desc") {
	case "asc":
		params.SortAsc = true
	case "desc":
	default:
		badQueryParam(c, "sort")
		return params, false
	}

	return params, true
}

func badQueryParam(c *gin.Context, name string) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Code:    "validation_error",
		Message: name + " query parameter is invalid",
	})
}

func (s *Server) handleGetFile(c *gin.Context) {
	user := currentUser(c)

	asset, err := s.files.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		s.fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFileResponse(asset))
}

func (s *Server) handleRenameFile(c *gin.Context) {
	user := currentUser(c)

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "validation_error",
			Message: bindingMessage(err),
		})
		return
	}

	asset, err := s.files.Rename(c.Request.Context(), user.ID, c.Param("id"), req.DisplayName)
	if err != nil {
		s.fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFileResponse(asset))
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	user := currentUser(c)

	if err := s.files.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		s.fileError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleDownloadURL(c *gin.Context) {
	user := currentUser(c)

	url, filename, err := s.files.DownloadURL(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		s.fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, urlResponse{URL: url, Filename: filename})
}

func (s *Server) handleThumbnailURL(c *gin.Context) {
	user := currentUser(c)

	url, err := s.files.ThumbnailURL(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		s.fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, urlResponse{URL: url})
}

func (s *Server) fileError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{
			Code:    "not_found",
			Message: "File not found",
		})
		return
	}
	c.Error(err)
	abortInternal(c)
}
