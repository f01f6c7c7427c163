package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	scandomain "github.com/smallbiznis/pairlink/internal/scan/domain"
)

type recordScanRequest struct {
	Payload   string   `json:"payload"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

// @Summary      Record Scan
// @Description  Record a scan of a shared code and attempt proximity pairing
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        X-Submitter-ID header string true "Submitter ID"
// @Param        request body recordScanRequest true "Record Scan Request"
// @Success      200  {object}  domain.ScanResult
// @Router       /scans [post]
func (s *Server) RecordScan(c *gin.Context) {
	submitterID := strings.TrimSpace(c.GetHeader(HeaderSubmitter))
	if submitterID == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req recordScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.scanSvc.RecordScan(c.Request.Context(), scandomain.RecordScanRequest{
		SubmitterID: submitterID,
		Payload:     strings.TrimSpace(req.Payload),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Accuracy:    req.Accuracy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// @Summary      List Recent Scans
// @Description  List the caller's most recent scans, newest first
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        X-Submitter-ID header string true "Submitter ID"
// @Param        limit query int false "Limit"
// @Success      200  {object}  []domain.ScanEvent
// @Router       /scans [get]
func (s *Server) ListRecentScans(c *gin.Context) {
	submitterID := strings.TrimSpace(c.GetHeader(HeaderSubmitter))
	if submitterID == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	scans, err := s.scanSvc.ListRecentScans(c.Request.Context(), scandomain.ListRecentScansRequest{
		SubmitterID: submitterID,
		Limit:       query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": scans})
}
