// Package auth API 요청의 App Key 인증을 담당합니다.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Authenticator 설정 파일에 등록된 App Key 목록으로 요청을 인증합니다. 생성 이후에는 읽기 전용입니다.
type Authenticator struct {
	// 키 길이가 비교 시간에 드러나지 않도록 해시로 보관한다.
	keyHashes [][sha256.Size]byte
}

// NewAuthenticator 빈 문자열은 무시합니다.
func NewAuthenticator(appKeys []string) *Authenticator {
	a := &Authenticator{}
	for _, k := range appKeys {
		if k == "" {
			continue
		}
		a.keyHashes = append(a.keyHashes, sha256.Sum256([]byte(k)))
	}
	return a
}

// Authenticate 등록된 키 중 하나와 일치하는지 확인합니다.
func (a *Authenticator) Authenticate(appKey string) bool {
	if appKey == "" {
		return false
	}

	h := sha256.Sum256([]byte(appKey))

	matched := 0
	for _, k := range a.keyHashes {
		matched |= subtle.ConstantTimeCompare(h[:], k[:])
	}
	return matched == 1
}
