package entity

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Identity 本地登记的身份
// 登记表只是便利存储，不构成安全边界
type Identity struct {
	Username     string    `json:"username"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	DOB          string    `json:"dob"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NormalizeUsername 去除首尾空白、转小写并删除全部空白字符
func NormalizeUsername(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// DeriveAddress 由规范化用户名生成地址
func DeriveAddress(normalized, suffix string) string {
	return normalized + "." + strings.TrimPrefix(suffix, ".")
}

// NewIdentity 创建身份，username 需已规范化
func NewIdentity(username, suffix, dob string) *Identity {
	return &Identity{
		Username:     username,
		Address:      DeriveAddress(username, suffix),
		DOB:          dob,
		RegisteredAt: time.Now().UTC(),
	}
}

// SetPassword 设置并散列密码
func (i *Identity) SetPassword(password string, cost int) error {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	i.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (i *Identity) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(i.PasswordHash), []byte(password))
	return err == nil
}

// Clone 返回副本
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	cp := *i
	return &cp
}
