package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AlvinSugijanto/job-scraper/internal/models"
	"github.com/AlvinSugijanto/job-scraper/internal/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "running",
		"message": "job scraper api",
	})
}

// handleScrape runs a synchronous scrape described by query parameters.
func (s *Server) handleScrape(c *gin.Context) {
	s.scrapeAndRespond(c, searchRequestFromQuery(c))
}

// handleSearch runs a synchronous scrape described by a JSON body.
func (s *Server) handleSearch(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body: " + err.Error()})
		return
	}
	s.scrapeAndRespond(c, req)
}

func (s *Server) scrapeAndRespond(c *gin.Context, req models.SearchRequest) {
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	summary, err := s.runScrape(c.Request.Context(), "", req, nil)
	if err != nil {
		s.log.Error().Err(err).Str("keywords", req.Keywords).Msg("scrape failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	jobs := summary.Jobs
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    summary.TotalJobs,
		"new_jobs": summary.NewJobs,
		"from_db":  summary.TotalJobs - summary.NewJobs,
		"jobs":     jobs,
	})
}

func (s *Server) handleListStored(c *gin.Context) {
	filter := store.ListFilter{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Offset:    intQuery(c, "skip", 0),
		Limit:     intQuery(c, "limit", 50),
	}

	jobs, total, err := s.store.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"count":   len(jobs),
		"jobs":    jobs,
	})
}

func (s *Server) handleGetStored(c *gin.Context) {
	job, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

func (s *Server) handleDeleteStored(c *gin.Context) {
	id := c.Param("id")
	err := s.store.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": id})
}

func (s *Server) handleDeleteAll(c *gin.Context) {
	n, err := s.store.DeleteAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
}

func searchRequestFromQuery(c *gin.Context) models.SearchRequest {
	req := models.SearchRequest{
		Keywords: c.Query("keywords"),
		Location: c.Query("location"),
		JobType:  models.JobType(c.Query("job_type")),
	}

	req.Distance = intQuery(c, "distance", 0)
	req.HoursOld = intQuery(c, "hours_old", 0)
	req.ResultsWanted = intQuery(c, "results_wanted", 0)
	req.IsRemote = boolQuery(c, "is_remote")
	req.EasyApply = boolQuery(c, "easy_apply")
	req.FetchDescriptions = boolQuery(c, "fetch_descriptions")
	return req
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func boolQuery(c *gin.Context, name string) bool {
	return strings.EqualFold(c.Query(name), "true")
}
