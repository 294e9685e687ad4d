package service

import (
	"errors"
	"time"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// PartnerAuthService 合作伙伴认证服务（与管理员 JWT 使用独立密钥）
type PartnerAuthService struct {
	cfg         *config.Config
	partnerRepo repository.PartnerRepository
}

// NewPartnerAuthService 创建合作伙伴认证服务
func NewPartnerAuthService(cfg *config.Config, partnerRepo repository.PartnerRepository) *PartnerAuthService {
	return &PartnerAuthService{
		cfg:         cfg,
		partnerRepo: partnerRepo,
	}
}

// PartnerJWTClaims 合作伙伴 JWT 声明
type PartnerJWTClaims struct {
	PartnerID uint   `json:"partner_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成合作伙伴 JWT Token
func (s *PartnerAuthService) GenerateJWT(partner *models.Partner) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.PartnerJWT.ExpireHours) * time.Hour)

	claims := PartnerJWTClaims{
		PartnerID: partner.ID,
		Role:      partner.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.PartnerJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析合作伙伴 JWT Token
func (s *PartnerAuthService) ParseJWT(tokenString string) (*PartnerJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &PartnerJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.PartnerJWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*PartnerJWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}

// Login 合作伙伴登录
func (s *PartnerAuthService) Login(email, password string) (*models.Partner, string, time.Time, error) {
	partner, err := s.partnerRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if partner == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if partner.Status != constants.PartnerStatusActive {
		return nil, "", time.Time{}, ErrPartnerDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(partner.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(partner)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return partner, token, expiresAt, nil
}

// ChangePassword 修改合作伙伴密码
func (s *PartnerAuthService) ChangePassword(partnerID uint, oldPassword, newPassword string) error {
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return err
	}
	if partner == nil {
		return ErrPartnerNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(partner.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	partner.PasswordHash = string(hash)
	return s.partnerRepo.Update(partner)
}
