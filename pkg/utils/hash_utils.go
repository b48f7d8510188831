package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost bcrypt 计算成本, 测试可调低以加快速度
var PasswordCost = bcrypt.DefaultCost

// HashPassword 生成密码的 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash 校验密码, 哈希格式错误时同样返回 false
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
