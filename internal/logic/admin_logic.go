package logic

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/auth"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgServerError         = "Server error"
)

// SeedPasswordCost 初始化管理员使用的 bcrypt cost
const SeedPasswordCost = 12

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// dummyPasswordHash 未知邮箱时用于比较的哈希，cost 与真实管理员一致，使两种失败耗时接近
func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), SeedPasswordCost)
	})
	return dummyHash
}

// AdminLogic 管理员登录
type AdminLogic struct {
	db     *gorm.DB
	tokens *auth.TokenManager
}

// NewAdminLogic 创建管理员业务逻辑
func NewAdminLogic(db *gorm.DB, tokens *auth.TokenManager) *AdminLogic {
	return &AdminLogic{db: db, tokens: tokens}
}

// Login 校验密码并签发 token；未知邮箱与密码错误返回相同错误
func (l *AdminLogic) Login(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", apperr.Validation(msgCredentialsRequired)
	}

	var admin model.AdminUserModel
	if err := l.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(password))
			return "", apperr.Auth(msgInvalidCredentials)
		}
		logger.Error("Admin login lookup failed: %v", err)
		return "", apperr.Upstream(msgServerError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", apperr.Auth(msgInvalidCredentials)
	}

	token, err := l.tokens.Sign(admin.Id, admin.Email)
	if err != nil {
		logger.Error("Failed to sign admin token: %v", err)
		return "", apperr.Upstream(msgServerError, err)
	}

	logger.Info("Admin %d logged in", admin.Id)
	return token, nil
}

// SeedAdmin 创建管理员，已存在时保持不变，返回是否新建
func SeedAdmin(db *gorm.DB, email, password string, cost int) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, errors.New("email and password are required")
	}

	var count int64
	if err := db.Model(&model.AdminUserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := db.Create(&model.AdminUserModel{Email: email, Password: string(hash)}).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
