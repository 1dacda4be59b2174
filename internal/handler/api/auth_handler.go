package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"quizhub/internal/config"
	"quizhub/internal/middleware"
	"quizhub/internal/models"
	"quizhub/internal/repository"
)

// AuthHandler covers registration, login and logout.
type AuthHandler struct {
	repos  *Repos
	jwtCfg *config.JWTConfig
	logger *zap.Logger
}

func NewAuthHandler(repos *Repos, jwtCfg *config.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{repos: repos, jwtCfg: jwtCfg, logger: logger}
}

type registerRequest struct {
	Email         string `json:"user_mail"`
	Name          string `json:"user_name"`
	Password      string `json:"user_pass"`
	Qualification string `json:"qualification"`
	DOB           string `json:"dob"`
}

type loginRequest struct {
	Email    string `json:"user_mail"`
	Password string `json:"user_pass"`
}

// Register creates a customer account. Admin accounts are seeded, never
// self-registered.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}

	exists, err := h.repos.User.ExistsByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}
	if exists {
		return errorJSON(c, http.StatusBadRequest, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	user := &models.User{
		Email:         req.Email,
		Name:          req.Name,
		PasswordHash:  string(hash),
		Role:          models.RoleCustomer,
		Qualification: req.Qualification,
		DOB:           req.DOB,
		Active:        true,
	}
	if err := h.repos.User.Create(user); err != nil {
		h.logger.Error("register insert failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	return messageJSON(c, http.StatusCreated, "User registered successfully")
}

// Login authenticates any user and issues a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, false)
}

// AdminLogin authenticates and additionally requires the admin role.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, true)
}

func (h *AuthHandler) login(c echo.Context, adminOnly bool) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.repos.User.FindByEmail(req.Email)
	if err != nil {
		if !repository.IsNotFound(err) {
			h.logger.Error("login lookup failed", zap.Error(err))
		}
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if adminOnly && !user.IsAdmin() {
		return errorJSON(c, http.StatusForbidden, "Not an admin user")
	}

	token, err := middleware.IssueToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Login failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"role":    user.Role,
	})
}

// Logout exists for client symmetry; bearer tokens are stateless, so the
// client simply discards its token.
func (h *AuthHandler) Logout(c echo.Context) error {
	return messageJSON(c, http.StatusOK, "Logged out successfully")
}

// Profile returns the caller's own account record.
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.repos.User.FindByID(middleware.UserID(c))
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound(c, "User")
		}
		h.logger.Error("profile lookup failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, user)
}
