package storefront

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// StoreID 스토어(쇼핑몰) 식별자입니다.
type StoreID string

const (
	BigGeek      StoreID = "biggeek"
	Ozon         StoreID = "ozon"
	Wildberries  StoreID = "wildberries"
	YandexMarket StoreID = "yandex_market"
	MegaMarket   StoreID = "megamarket"
)

// DisplayName 알림 메시지 등에 표시될 이름을 반환합니다. (예: yandex_market → YandexMarket)
func (id StoreID) DisplayName() string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return strcase.ToCamel(string(id))
}

func (id StoreID) String() string {
	return string(id)
}

var displayNames = map[StoreID]string{
	BigGeek:     "BigGeek",
	Wildberries: "Wildberries",
	MegaMarket:  "MegaMarket",
}

// detectRule URL에 포함된 도메인 조각과 스토어의 대응 규칙
type detectRule struct {
	patterns []string
	store    StoreID
}

// 먼저 일치하는 규칙이 선택되므로 순서가 곧 우선순위다.
var detectRules = []detectRule{
	{patterns: []string{"biggeek.ru"}, store: BigGeek},
	{patterns: []string{"ozon.ru"}, store: Ozon},
	{patterns: []string{"wildberries.ru", "wb.ru"}, store: Wildberries},
	{patterns: []string{"market.yandex.ru"}, store: YandexMarket},
	{patterns: []string{"megamarket.ru"}, store: MegaMarket},
}

// Detect URL이 속한 스토어를 판별합니다. 알려진 도메인이 없으면 false를 반환합니다.
//
// 대소문자를 구분하지 않으며 I/O를 수행하지 않습니다.
func Detect(rawURL string) (StoreID, bool) {
	u := strings.ToLower(rawURL)

	for _, r := range detectRules {
		for _, p := range r.patterns {
			if strings.Contains(u, p) {
				return r.store, true
			}
		}
	}

	return "", false
}

// Resolve Detect와 같지만 지원하지 않는 URL이면 ErrUnsupportedStore를 감싼 에러를 반환합니다.
func Resolve(rawURL string) (StoreID, error) {
	id, ok := Detect(rawURL)
	if !ok {
		return "", NewErrUnsupportedStore(rawURL)
	}
	return id, nil
}

// Known 주어진 식별자가 Detect가 반환할 수 있는 값인지 확인합니다.
func Known(id StoreID) bool {
	for _, r := range detectRules {
		if r.store == id {
			return true
		}
	}
	return false
}

// All Detect가 반환할 수 있는 모든 스토어를 우선순위 순으로 반환합니다.
func All() []StoreID {
	ids := make([]StoreID, 0, len(detectRules))
	for _, r := range detectRules {
		ids = append(ids, r.store)
	}
	return ids
}
