package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken 生成 n 字节的安全随机数, 以十六进制字符串返回
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
