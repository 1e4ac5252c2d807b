package handler

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"farmagro-system/internal/database/models"
	"farmagro-system/internal/utils"
)

const tokenTTL = 24 * time.Hour

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=32"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
}

func (s *UserHandler) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		return nil, utils.StoreError(err)
	}
	if count > 0 {
		return nil, utils.ValidationErrorf("username or email already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.StoreError(err)
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashed),
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	return &user, nil
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *UserHandler) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("username = ?", req.Username).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ValidationErrorf("invalid username or password")
		}
		return nil, utils.StoreError(err)
	}

	if !user.IsActive {
		return nil, utils.ValidationErrorf("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, utils.ValidationErrorf("invalid username or password")
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Username, tokenTTL)
	if err != nil {
		return nil, utils.StoreError(err)
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, utils.StoreError(err)
	}

	return &LoginResponse{Token: token, ExpiresAt: exp, User: &user}, nil
}

func (s *UserHandler) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundErrorf("user %d", userID)
		}
		return nil, utils.StoreError(err)
	}
	return &user, nil
}
