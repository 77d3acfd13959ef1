package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/models"
	"github.com/greenloophq/greenloop/services/jwt"
	"golang.org/x/crypto/bcrypt"

	apiError "github.com/greenloophq/greenloop/errors"
)

// Mailer sends transactional mail; satisfied by mailingservices.Mailgun.
type Mailer interface {
	SendResetPassword(toEmail, resetLink string) (string, error)
}

type AuthService interface {
	SignupUser(user *models.User) (*models.User, error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	GetUserProfile(userID uint) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	DeleteUser(userID uint) error
	AssignRole(userID uint, roleName string) error
	SendEmailForPasswordReset(request *models.ForgotPassword, mail Mailer) *apiError.Error
	ResetPassword(userID uint, newPassword string) *apiError.Error
}

type authService struct {
	Config   *config.Config
	userRepo db.UserRepository
}

func NewAuthService(userRepo db.UserRepository, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		userRepo: userRepo,
	}
}

func (s *authService) SignupUser(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.NormalizeInput(); err != nil {
		log.Printf("SignupUser error normalizing input: %v", err)
		return nil, apiError.ErrBadRequest
	}
	if err := models.ValidatePassword(user.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	if err := s.userRepo.IsEmailExist(user.Email); err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}
	if user.Telephone != "" {
		if err := s.userRepo.IsPhoneExist(user.Telephone); err != nil {
			log.Printf("SignupUser error: %v", err)
			return nil, apiError.GetUniqueContraintError(err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.HashedPassword = string(hashedPassword)
	user.Password = ""

	user, err = s.userRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error creating user: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	createdUser, err := s.userRepo.FindUserByEmail(user.Email)
	if err != nil {
		log.Printf("SignupUser error fetching created user: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	return createdUser, nil
}

func GenerateHashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashedPassword), err
}

// LoginUser verifies credentials and returns a token pair.
func (a *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	foundUser, err := a.userRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if errors.Is(err, apiError.ErrNotFound) {
			return nil, apiError.New("invalid email or password", http.StatusUnprocessableEntity)
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	if foundUser.IsBlocked {
		return nil, apiError.New("account is blocked", http.StatusForbidden)
	}

	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		log.Printf("Invalid password for user %s", foundUser.Email)
		return nil, apiError.ErrInvalidPassword
	}

	roleName := foundUser.Role.Name
	if roleName == "" {
		role, err := a.userRepo.FindRoleByID(foundUser.RoleID)
		if err != nil {
			log.Printf("Error fetching role for user %s: %v", foundUser.Email, err)
			return nil, apiError.New("unable to fetch role", http.StatusInternalServerError)
		}
		roleName = role.Name
	}

	accessToken, refreshToken, err := jwt.GenerateTokenPair(foundUser.Email, a.Config.JWTSecret, foundUser.ID, roleName)
	if err != nil {
		log.Printf("Error generating token pair for user %s: %v", foundUser.Email, err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:        foundUser.ID,
			Fullname:  foundUser.Fullname,
			Telephone: foundUser.Telephone,
			Email:     foundUser.Email,
			RoleName:  roleName,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authService) GetUserProfile(userID uint) (*models.User, error) {
	user, err := a.userRepo.FindUserByID(userID)
	if err != nil {
		log.Printf("Error fetching user profile: %v", err)
		return nil, err
	}
	return user, nil
}

func (a *authService) GetAllUsers() ([]models.User, error) {
	return a.userRepo.GetAllUsers()
}

func (a *authService) DeleteUser(userID uint) error {
	return a.userRepo.DeleteUser(userID)
}

// AssignRole moves a user into one of the closed roles.
func (a *authService) AssignRole(userID uint, roleName string) error {
	name, err := models.ParseRole(roleName)
	if err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}
	role, err := a.userRepo.FindRoleByName(name)
	if err != nil {
		return err
	}
	return a.userRepo.AssignRole(userID, role.ID)
}

func (a *authService) SendEmailForPasswordReset(request *models.ForgotPassword, mail Mailer) *apiError.Error {
	user, err := a.userRepo.FindUserByEmail(request.Email)
	if err != nil {
		return apiError.New("user not found", http.StatusNotFound)
	}

	resetToken, err := jwt.GeneratePasswordResetToken(user.ID, a.Config.JWTSecret)
	if err != nil {
		log.Printf("error generating reset token: %v", err)
		return apiError.ErrInternalServerError
	}

	baseURL := a.Config.BaseUrl
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	resetLink := baseURL + "/reset-password/" + resetToken

	if _, err := mail.SendResetPassword(user.Email, resetLink); err != nil {
		log.Printf("error sending reset mail: %v", err)
		return apiError.New("connection to mail service interrupted", http.StatusInternalServerError)
	}
	return nil
}

func (a *authService) ResetPassword(userID uint, newPassword string) *apiError.Error {
	if err := models.ValidatePassword(newPassword); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}
	hashed, err := GenerateHashPassword(newPassword)
	if err != nil {
		log.Printf("error hashing password: %v", err)
		return apiError.ErrInternalServerError
	}
	if err := a.userRepo.ResetPassword(userID, hashed); err != nil {
		log.Printf("error resetting password: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
