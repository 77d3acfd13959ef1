package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greenloophq/greenloop/models"
	"github.com/greenloophq/greenloop/server/response"
	"github.com/greenloophq/greenloop/services/jwt"

	errs "github.com/greenloophq/greenloop/errors"
)

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := decode(c, &user); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		createdUser, err := s.AuthService.SignupUser(&user)
		if err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}

		response.JSON(c, "Signup successful", http.StatusCreated, models.UserResponse{
			ID:        createdUser.ID,
			Fullname:  createdUser.Fullname,
			Telephone: createdUser.Telephone,
			Email:     createdUser.Email,
			RoleName:  createdUser.Role.Name,
		}, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := decode(c, &loginRequest); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		loginResponse, apiErr := s.AuthService.LoginUser(&loginRequest)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

// handleLogout blacklists the access token so it cannot be replayed.
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, exists := c.Get("access_token")
		if !exists {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		token, ok := accessToken.(string)
		if !ok || token == "" {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		if err := s.UserRepository.AddToBlackList(&models.Blacklist{Token: token}); err != nil {
			response.JSON(c, "logout failed", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		user, err := s.AuthService.GetUserProfile(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, models.UserResponse{
			ID:        user.ID,
			Fullname:  user.Fullname,
			Telephone: user.Telephone,
			Email:     user.Email,
			RoleName:  user.Role.Name,
		}, nil)
	}
}

func (s *Server) HandleForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.ForgotPassword
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		if apiErr := s.AuthService.SendEmailForPasswordReset(&request, s.Mail); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "Reset Password Link Sent Successfully", http.StatusOK, nil, nil)
	}
}

func (s *Server) ResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var resetRequest models.ResetPassword
		if err := decode(c, &resetRequest); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		if resetRequest.Password != resetRequest.ConfirmPassword {
			response.JSON(c, "passwords do not match", http.StatusBadRequest, nil, nil)
			return
		}

		token := c.Param("token")
		claims, err := jwt.ValidateAndGetClaims(token, s.Config.JWTSecret)
		if err != nil {
			response.JSON(c, "invalid or expired reset token", http.StatusUnauthorized, nil, err)
			return
		}
		if claims["type"] != "password_reset_token" {
			response.JSON(c, "invalid reset token", http.StatusUnauthorized, nil, nil)
			return
		}
		idValue, ok := claims["id"].(float64)
		if !ok {
			response.JSON(c, "invalid reset token", http.StatusUnauthorized, nil, nil)
			return
		}

		if apiErr := s.AuthService.ResetPassword(uint(idValue), resetRequest.Password); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "Password Reset Successfully", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleGetAllUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.AuthService.GetAllUsers()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, users, nil)
	}
}

func (s *Server) handleAssignRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.AssignRoleRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		if err := s.AuthService.AssignRole(request.UserID, request.Role); err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "role assigned", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid user id", http.StatusBadRequest, nil, err)
			return
		}

		if err := s.AuthService.DeleteUser(uint(userID)); err != nil {
			if apiErr, ok := err.(*errs.Error); ok {
				response.JSON(c, "", apiErr.Status, nil, apiErr)
				return
			}
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "user deleted", http.StatusOK, nil, nil)
	}
}
