package api

import (
	"net/http"
	"strconv"

	"futures-capital-allocator/internal/allocation"

	"github.com/gin-gonic/gin"
)

// AllocateRequest carries one allocation pass: the candidate signals plus the
// account snapshot from the (external) account-state collaborator.
type AllocateRequest struct {
	Account         allocation.AccountSnapshot `json:"account"`
	AvailableMargin float64                    `json:"available_margin"`
	Signals         []allocation.Signal        `json:"signals"`
}

// handleAllocate runs one capital allocation pass. A fresh allocator is
// constructed per request so each call is its own decision epoch.
func (s *Server) handleAllocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	allocator := allocation.NewCapitalAllocator(s.allocConfig, s.marginCtl, req.Account, s.log)
	result := allocator.Allocate(req.Signals, req.AvailableMargin)

	s.eventBus.PublishAllocationPass(result)
	if len(result.Rejections) > 0 {
		s.eventBus.PublishSignalRejections(result.Summary.PassID, result.Rejections)
	}
	if result.Summary.MarginStatus == allocation.MarginLocked {
		s.eventBus.PublishMarginLock(result.Summary.PassID, result.Summary.MarginHealth)
	}

	successResponse(c, result)
}

// handleMarginHealth previews the margin tier for arbitrary figures without
// running an allocation pass.
func (s *Server) handleMarginHealth(c *gin.Context) {
	currentMargin, err := strconv.ParseFloat(c.Query("current_margin"), 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "current_margin must be a number")
		return
	}
	maxMargin, err := strconv.ParseFloat(c.Query("max_margin"), 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "max_margin must be a number")
		return
	}

	health := s.marginCtl.CheckMarginHealth(currentMargin, maxMargin)
	successResponse(c, gin.H{
		"health":          health,
		"remaining_space": s.marginCtl.GetRemainingMarginSpace(currentMargin, maxMargin),
	})
}

// handleConfig exposes the active allocation policy.
func (s *Server) handleConfig(c *gin.Context) {
	successResponse(c, s.allocConfig)
}
