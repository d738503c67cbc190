package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
	"memorial-platform/internal/repository"
)

// AuthHandler signs admins in. There is no registration endpoint; admin
// accounts are provisioned directly in the database.
type AuthHandler struct {
	Admins    *repository.AdminRepo
	JwtSecret string
}

func NewAuthHandler(admins *repository.AdminRepo, jwtSecret string) *AuthHandler {
	return &AuthHandler{Admins: admins, JwtSecret: jwtSecret}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) createJWT(admin *models.Admin) (string, error) {
	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(h.JwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	admin, err := h.Admins.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if apperr.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}

		log.Println("Database error on login:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	// Compare stored passwordHash with the entered password
	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	tokenString, err := h.createJWT(admin)
	if err != nil {
		log.Println("Failed to create JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful.", "token": tokenString})
}
