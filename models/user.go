package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Name      string    `gorm:"size:255;default:null" json:"name"`
	Role      UserRole  `gorm:"type:enum('SUPER_ADMIN','ADMIN','INVENTORY_MANAGER','FINANCIAL_MANAGER','ACCOUNTANT');not null" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role" binding:"required"`
}

type LoginResult struct {
	Token string   `json:"token"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

func (u User) GetId() int {
	return u.ID
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if !input.Role.IsValid() {
		return nil, errors.New("invalid role")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: input.Username,
		Password: hashed,
		Name:     input.Name,
		Role:     input.Role,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginResult, error) {
	db := config.GetDB()

	var user User
	err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)
	if err != nil && errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, errors.New("invalid username or password")
	}
	if err != nil {
		return nil, err
	}

	isActive := *user.IsActive
	if !isActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
