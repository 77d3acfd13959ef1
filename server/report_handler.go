package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenloophq/greenloop/models"
	"github.com/greenloophq/greenloop/server/response"

	errs "github.com/greenloophq/greenloop/errors"
)

// handleCreateReport accepts either a JSON body or a multipart form with
// an optional "image" file. The photo is uploaded to S3 and its raw bytes
// are handed to the waste classifier.
func (s *Server) handleCreateReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		var request models.CreateReportRequest
		var image []byte

		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			request.Location = c.PostForm("location")
			request.WasteType = c.PostForm("waste_type")
			request.Amount = c.PostForm("amount")

			if fileHeader, err := c.FormFile("image"); err == nil {
				file, err := fileHeader.Open()
				if err != nil {
					response.JSON(c, "unable to read uploaded image", http.StatusBadRequest, nil, err)
					return
				}
				image, err = io.ReadAll(file)
				file.Close()
				if err != nil {
					response.JSON(c, "unable to read uploaded image", http.StatusBadRequest, nil, err)
					return
				}

				imageURL, err := s.MediaService.UploadReportImage(fileHeader, userID)
				if err != nil {
					response.JSON(c, "image upload failed", http.StatusInternalServerError, nil, err)
					return
				}
				request.ImageURL = imageURL
			}
		} else {
			if err := decode(c, &request); err != nil {
				response.JSON(c, "", http.StatusBadRequest, nil, err)
				return
			}
		}

		if request.Location == "" || request.Amount == "" {
			response.JSON(c, "location and amount are required", http.StatusBadRequest, nil, nil)
			return
		}
		if request.WasteType == "" && len(image) == 0 {
			response.JSON(c, "waste_type is required when no photo is attached", http.StatusBadRequest, nil, nil)
			return
		}

		report, err := s.ReportService.CreateReport(userID, request, image)
		if err != nil {
			response.JSON(c, "unable to create report", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "report created", http.StatusCreated, report, nil)
	}
}

func (s *Server) handleGetMyReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		reports, err := s.ReportService.GetReportsByUserID(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, reports, nil)
	}
}

func (s *Server) handleGetPaginatedReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			response.JSON(c, "invalid page", http.StatusBadRequest, nil, nil)
			return
		}
		pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
		if err != nil {
			response.JSON(c, "invalid page_size", http.StatusBadRequest, nil, nil)
			return
		}

		reports, err := s.ReportService.GetPaginatedReports(page, pageSize)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, reports, nil)
	}
}

func (s *Server) handleVerifyReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, err)
			return
		}

		report, err := s.ReportService.VerifyReport(reportID, userFromContext(c))
		if err != nil {
			respondReportError(c, err)
			return
		}
		response.JSON(c, "report verified", http.StatusOK, report, nil)
	}
}

func (s *Server) handleCollectReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, err)
			return
		}

		report, err := s.ReportService.CollectReport(reportID, userFromContext(c))
		if err != nil {
			respondReportError(c, err)
			return
		}
		response.JSON(c, "report collected", http.StatusOK, report, nil)
	}
}

func (s *Server) handleDeleteReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID, err := uuid.Parse(c.Param("reportID"))
		if err != nil {
			response.JSON(c, "invalid report id", http.StatusBadRequest, nil, err)
			return
		}

		if err := s.ReportService.DeleteReport(reportID, userFromContext(c)); err != nil {
			respondReportError(c, err)
			return
		}
		response.JSON(c, "report deleted", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleGetTodayReportCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.ReportRepository.GetTodayReportCount()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"count": count}, nil)
	}
}

func respondReportError(c *gin.Context, err error) {
	if apiErr, ok := err.(*errs.Error); ok {
		response.JSON(c, "", apiErr.Status, nil, apiErr)
		return
	}
	response.JSON(c, "", http.StatusInternalServerError, nil, err)
}
