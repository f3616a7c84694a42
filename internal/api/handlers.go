package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyperifyio/seoscan/internal/app"
	"github.com/hyperifyio/seoscan/internal/assistant"
	"github.com/hyperifyio/seoscan/internal/fetch"
	"github.com/hyperifyio/seoscan/internal/report"
	"github.com/hyperifyio/seoscan/internal/store"
)

type analyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

type analyzeResponse struct {
	Success  bool           `json:"success"`
	Analysis *report.Report `json:"analysis,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type askRequest struct {
	URL      string `json:"url" binding:"required"`
	Question string `json:"question" binding:"required"`
}

type askResponse struct {
	Success bool              `json:"success"`
	Answer  *assistant.Answer `json:"answer,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	}
}

// analyzeHandler runs the pipeline for the requested URL and maps failures
// onto the response contract: malformed URL 400, target timeout 408, target
// 404 passthrough, target 5xx 502, anything else 500.
func analyzeHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, analyzeResponse{Success: false, Error: "url is required"})
			return
		}

		rep, err := a.Analyze(c.Request.Context(), req.URL)
		if err != nil {
			status, msg := classify(err)
			c.JSON(status, analyzeResponse{Success: false, Error: msg})
			return
		}
		c.JSON(http.StatusOK, analyzeResponse{Success: true, Analysis: rep})
	}
}

func reportHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		url := c.Query("url")
		if url == "" {
			c.JSON(http.StatusBadRequest, analyzeResponse{Success: false, Error: "url query parameter is required"})
			return
		}
		rep, err := a.LatestReport(c.Request.Context(), url)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, analyzeResponse{Success: false, Error: "no report for this url"})
				return
			}
			if errors.Is(err, app.ErrInvalidURL) {
				c.JSON(http.StatusBadRequest, analyzeResponse{Success: false, Error: "invalid URL"})
				return
			}
			c.JSON(http.StatusInternalServerError, analyzeResponse{Success: false, Error: "failed to load report"})
			return
		}
		c.JSON(http.StatusOK, analyzeResponse{Success: true, Analysis: rep})
	}
}

func assistantHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req askRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, askResponse{Success: false, Error: "url and question are required"})
			return
		}
		answer, err := a.Ask(c.Request.Context(), req.URL, req.Question)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, askResponse{Success: false, Error: "no report for this url; analyze it first"})
				return
			}
			if errors.Is(err, app.ErrInvalidURL) {
				c.JSON(http.StatusBadRequest, askResponse{Success: false, Error: "invalid URL"})
				return
			}
			c.JSON(http.StatusInternalServerError, askResponse{Success: false, Error: "assistant request failed"})
			return
		}
		c.JSON(http.StatusOK, askResponse{Success: true, Answer: &answer})
	}
}

// classify maps pipeline failures onto HTTP statuses with a human-readable
// message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrInvalidURL):
		return http.StatusBadRequest, "invalid URL: provide an absolute http(s) address"
	case errors.Is(err, fetch.ErrTimeout):
		return http.StatusRequestTimeout, "the target page took too long to respond"
	}
	var se *fetch.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusNotFound:
			return http.StatusNotFound, "the target page was not found"
		case se.Code >= 500:
			return http.StatusBadGateway, "the target site returned a server error"
		}
	}
	return http.StatusInternalServerError, "analysis failed"
}
