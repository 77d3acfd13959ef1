package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greenloophq/greenloop/models"
	"github.com/greenloophq/greenloop/server/response"

	errs "github.com/greenloophq/greenloop/errors"
)

func (s *Server) handleGetRewardBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		balance, err := s.RewardService.GetBalance(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"balance": balance}, nil)
	}
}

func (s *Server) handleGetMyReward() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		reward, err := s.RewardService.GetOrCreateReward(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, reward, nil)
	}
}

func (s *Server) handleRedeemPoints() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		var request models.RedeemRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		reward, err := s.RewardService.Redeem(userID, request.Amount, request.Description)
		if err != nil {
			if errors.Is(err, errs.ErrInsufficientPoints) {
				response.JSON(c, "insufficient points", http.StatusUnprocessableEntity, nil, err)
				return
			}
			response.JSON(c, "redeem failed", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "points redeemed", http.StatusOK, reward, nil)
	}
}

func (s *Server) handleGetTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		txns, err := s.RewardService.GetTransactions(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, txns, nil)
	}
}

// handleReconcileReward reports the stored balance against the signed sum
// of the audit trail for the calling user.
func (s *Server) handleReconcileReward() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		balance, audited, err := s.RewardService.Reconcile(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"balance":    balance,
			"audited":    audited,
			"consistent": balance == audited,
		}, nil)
	}
}

func (s *Server) handleGetLeaderboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.RewardService.GetLeaderboard()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, entries, nil)
	}
}

func (s *Server) handleSetRewardLevel() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid user id", http.StatusBadRequest, nil, err)
			return
		}

		var request struct {
			Level int `json:"level" binding:"required"`
		}
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		if err := s.RewardService.SetRewardLevel(uint(userID), request.Level); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		response.JSON(c, "reward level updated", http.StatusOK, nil, nil)
	}
}
