// Package testutil 여러 패키지의 테스트에서 공통으로 쓰는 도우미 함수입니다.
package testutil

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// FreePort 테스트 서버가 바인딩할 수 있는 임의의 로컬 포트를 반환합니다.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// WaitForHTTP url이 응답할 때까지 대기합니다. 상태 코드는 따지지 않습니다.
func WaitForHTTP(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 500 * time.Millisecond}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}

	return fmt.Errorf("서버가 %v 안에 응답하지 않았습니다: %s", timeout, url)
}
