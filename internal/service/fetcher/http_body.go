package fetcher

import (
	"io"
)

// 커넥션 재사용을 위해 읽어서 버리는 최대 바이트 수. 이보다 크면 커넥션을 포기한다.
const maxDrainBytes = 64 * 1024

func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
}
