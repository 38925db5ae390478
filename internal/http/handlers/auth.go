package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/geocoder89/libraryhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
}

func NewAuthHandler(users UserStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req credentials

	if !BindPayload(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	// skip bcrypt for the common duplicate case; Create still enforces it
	_, err := h.users.GetByEmail(cctx, req.Email)
	if err == nil {
		respondDuplicateEmail(ctx)
		return
	}
	if !errors.Is(err, user.ErrNotFound) {
		_ = ctx.Error(err)
		ctx.Abort()
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		_ = ctx.Error(err)
		ctx.Abort()
		return
	}

	if _, err := h.users.Create(cctx, user.New(req.Email, hash, user.RoleUser)); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondDuplicateEmail(ctx)
			return
		}
		_ = ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req credentials

	if !BindPayload(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			apierror.Abort(ctx, http.StatusNotFound, apierror.UserNotFound, "User not found")
			return
		}
		_ = ctx.Error(err)
		ctx.Abort()
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		apierror.Abort(ctx, http.StatusUnauthorized, apierror.InvalidPassword, "Invalid password")
		return
	}

	token, err := h.jwt.Issue(found.ID, found.Email, string(found.Role))
	if err != nil {
		_ = ctx.Error(err)
		ctx.Abort()
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

func respondDuplicateEmail(ctx *gin.Context) {
	apierror.Abort(ctx, http.StatusBadRequest, apierror.DuplicateEmail, "Email already registered")
}
