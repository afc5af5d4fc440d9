// Package store 추적 상품과 가격 이력을 저장합니다.
//
// 현재 가격 갱신과 가격 이력 추가는 항상 하나의 트랜잭션에서 수행되며,
// 상품 삭제 시 가격 이력과 알림 이력도 같은 트랜잭션에서 함께 삭제됩니다.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/storefront"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const component = "store"

var (
	// ErrProductNotFound 상품이 없거나 요청한 사용자의 소유가 아닙니다.
	ErrProductNotFound = apperrors.New(apperrors.NotFound, "상품을 찾을 수 없습니다")

	// ErrChannelNotFound 사용자에게 연결된 알림 채널이 없습니다.
	ErrChannelNotFound = apperrors.New(apperrors.NotFound, "연결된 알림 채널이 없습니다")

	// ErrProductChanged 가격을 가져오는 동안 상품 URL이 바뀌어 관측 결과가 더 이상 유효하지 않습니다.
	ErrProductChanged = apperrors.New(apperrors.Conflict, "가격 확인 중에 상품 URL이 변경되었습니다")
)

// Store 가격 추적 저장소입니다.
type Store struct {
	db *gorm.DB
}

// Open 설정된 드라이버로 데이터베이스에 연결하고 스키마를 마이그레이션합니다.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 데이터베이스 드라이버입니다: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(200 * time.Millisecond),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 연결에 실패했습니다")
	}

	// SQLite는 동시 쓰기를 허용하지 않으므로 커넥션을 하나로 제한한다.
	if cfg.Driver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 커넥션 풀을 가져올 수 없습니다")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s, err := New(db)
	if err != nil {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"driver": cfg.Driver,
	}).Info("데이터베이스 연결 및 마이그레이션 완료")

	return s, nil
}

// New 이미 열린 gorm.DB로 Store를 생성하고 스키마를 마이그레이션합니다.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		panic("Store: gorm.DB는 필수입니다")
	}

	if err := db.AutoMigrate(&TrackedProduct{}, &PricePoint{}, &NotificationChannel{}, &PriceAlert{}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 마이그레이션에 실패했습니다")
	}

	return &Store{db: db}, nil
}

// Close 커넥션 풀을 닫습니다.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "데이터베이스 커넥션 풀을 가져올 수 없습니다")
	}
	return sqlDB.Close()
}

// Ping 데이터베이스 연결 상태를 확인합니다.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "데이터베이스 커넥션 풀을 가져올 수 없습니다")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "데이터베이스에 연결할 수 없습니다")
	}
	return nil
}

// CreateProduct 상품을 저장합니다. 현재 가격은 알 수 없는 상태(nil)로 시작합니다.
func (s *Store) CreateProduct(ctx context.Context, p *TrackedProduct) error {
	if !storefront.Known(p.Store) {
		return apperrors.Wrapf(storefront.ErrUnsupportedStore, apperrors.InvalidInput, "알 수 없는 스토어 식별자입니다: %s", p.Store)
	}

	p.ID = 0
	p.CurrentPrice = nil
	p.LastCheckedAt = nil

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return apperrors.Wrap(err, apperrors.System, "상품 저장에 실패했습니다")
	}
	return nil
}

// GetProduct ownerID 소유의 상품을 조회합니다. 다른 사용자의 상품이면 ErrProductNotFound를 반환합니다.
func (s *Store) GetProduct(ctx context.Context, ownerID, productID uint) (*TrackedProduct, error) {
	return findProduct(s.db.WithContext(ctx), ownerID, productID)
}

// ListProducts ownerID 소유의 상품 목록을 등록 순으로 반환합니다.
func (s *Store) ListProducts(ctx context.Context, ownerID uint) ([]TrackedProduct, error) {
	var products []TrackedProduct
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "상품 목록 조회에 실패했습니다")
	}
	return products, nil
}

// UpdateProduct 상품 정보를 수정합니다.
//
// URL이 바뀌면 스토어를 다시 판별하며, 이전 페이지의 가격은 더 이상 유효하지 않으므로 현재 가격을 초기화합니다.
// 기존 가격 이력은 유지됩니다.
func (s *Store) UpdateProduct(ctx context.Context, ownerID, productID uint, upd ProductUpdate) (*TrackedProduct, error) {
	var updated *TrackedProduct
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findProduct(tx, ownerID, productID)
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if upd.Name != nil {
			changes["name"] = *upd.Name
		}
		if upd.ClearTarget {
			changes["target_price"] = nil
		} else if upd.TargetPrice != nil {
			changes["target_price"] = *upd.TargetPrice
		}
		if upd.URL != nil && *upd.URL != p.URL {
			storeID, err := storefront.Resolve(*upd.URL)
			if err != nil {
				return err
			}
			changes["url"] = *upd.URL
			changes["store"] = storeID
			changes["current_price"] = nil
			changes["last_checked_at"] = nil
		}

		if len(changes) > 0 {
			if err := tx.Model(p).Updates(changes).Error; err != nil {
				return apperrors.Wrap(err, apperrors.System, "상품 수정에 실패했습니다")
			}
		}

		updated, err = findProduct(tx, ownerID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProduct ownerID 소유의 상품과 그 가격 이력을 함께 삭제합니다.
func (s *Store) DeleteProduct(ctx context.Context, ownerID, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, ownerID, productID); err != nil {
			return err
		}
		return deleteCascade(tx, productID)
	})
}

// DeleteProductByID 소유자 확인 없이 상품과 그 가격 이력을 삭제합니다.
func (s *Store) DeleteProductByID(ctx context.Context, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCascade(tx, productID)
	})
}

// ListAllTrackedProducts 가격 수집 대상인 전체 상품 목록을 반환합니다.
func (s *Store) ListAllTrackedProducts(ctx context.Context) ([]TrackedProduct, error) {
	var products []TrackedProduct
	if err := s.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "전체 상품 목록 조회에 실패했습니다")
	}
	return products, nil
}

// ListPriceHistory 상품의 가격 이력을 관측 시각 순으로 반환합니다. 상품이 없으면 빈 목록입니다.
func (s *Store) ListPriceHistory(ctx context.Context, productID uint) ([]PricePoint, error) {
	points := []PricePoint{}
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("observed_at, id").Find(&points).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "가격 이력 조회에 실패했습니다")
	}
	return points, nil
}

// RecordObservation 현재 가격 갱신과 가격 이력 추가를 하나의 트랜잭션으로 수행합니다.
// 어느 한쪽이라도 실패하면 둘 다 반영되지 않습니다.
//
// fetchedURL은 가격을 가져온 페이지의 URL입니다. 그 사이 상품 URL이 바뀌었다면 아무것도 기록하지 않고
// ErrProductChanged를 반환합니다.
func (s *Store) RecordObservation(ctx context.Context, productID uint, fetchedURL string, price float64, observedAt time.Time) (*Observation, error) {
	var obs Observation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p TrackedProduct
		if err := tx.Clauses(lockingClause(tx)...).First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return apperrors.Wrap(err, apperrors.System, "상품 조회에 실패했습니다")
		}

		if p.URL != fetchedURL {
			return ErrProductChanged
		}

		// p.CurrentPrice는 아래 갱신 이후 재사용되지 않도록 값으로 복사한다.
		if p.CurrentPrice != nil {
			previous := *p.CurrentPrice
			obs.PreviousPrice = &previous
		}

		point := PricePoint{ProductID: productID, Price: price, ObservedAt: observedAt}
		if err := tx.Create(&point).Error; err != nil {
			return apperrors.Wrap(err, apperrors.System, "가격 이력 추가에 실패했습니다")
		}
		obs.Point = point

		if err := tx.Model(&TrackedProduct{}).Where("id = ?", productID).Updates(map[string]any{
			"current_price":   price,
			"last_checked_at": observedAt,
		}).Error; err != nil {
			return apperrors.Wrap(err, apperrors.System, "현재 가격 갱신에 실패했습니다")
		}

		current := price
		checkedAt := observedAt
		p.CurrentPrice = &current
		p.LastCheckedAt = &checkedAt
		obs.Product = p

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &obs, nil
}

// UpdateCurrentPrice 현재 가격만 갱신합니다. 이력과 함께 기록하려면 RecordObservation을 사용합니다.
func (s *Store) UpdateCurrentPrice(ctx context.Context, productID uint, price float64) error {
	res := s.db.WithContext(ctx).Model(&TrackedProduct{}).Where("id = ?", productID).Update("current_price", price)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.System, "현재 가격 갱신에 실패했습니다")
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AppendPricePoint 가격 이력을 한 건 추가합니다.
func (s *Store) AppendPricePoint(ctx context.Context, productID uint, price float64, observedAt time.Time) (*PricePoint, error) {
	point := PricePoint{ProductID: productID, Price: price, ObservedAt: observedAt}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&TrackedProduct{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, apperrors.System, "상품 조회에 실패했습니다")
		}
		if count == 0 {
			return ErrProductNotFound
		}

		if err := tx.Create(&point).Error; err != nil {
			return apperrors.Wrap(err, apperrors.System, "가격 이력 추가에 실패했습니다")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &point, nil
}

// ClaimAlert (상품, 가격 기록)에 대한 알림 발송 권한을 획득합니다.
// 이미 다른 호출이 획득했다면 false를 반환합니다.
func (s *Store) ClaimAlert(ctx context.Context, productID, pricePointID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&PriceAlert{ProductID: productID, PricePointID: pricePointID})
	if res.Error != nil {
		return false, apperrors.Wrap(res.Error, apperrors.System, "알림 발송 이력 저장에 실패했습니다")
	}
	return res.RowsAffected > 0, nil
}

// ReleaseAlert ClaimAlert로 획득한 발송 권한을 반납합니다. 메시지가 발송 대기열에 들어가지 못했을 때 사용합니다.
func (s *Store) ReleaseAlert(ctx context.Context, productID, pricePointID uint) error {
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND price_point_id = ?", productID, pricePointID).
		Delete(&PriceAlert{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "알림 발송 이력 삭제에 실패했습니다")
	}
	return nil
}

// LinkChannel 사용자의 알림 수신 채팅을 연결합니다. 이미 연결되어 있으면 교체합니다.
func (s *Store) LinkChannel(ctx context.Context, ownerID uint, chatID int64) error {
	ch := NotificationChannel{OwnerID: ownerID, ChatID: chatID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"chat_id", "updated_at"}),
		}).
		Create(&ch).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "알림 채널 연결에 실패했습니다")
	}
	return nil
}

// FindChannel 사용자의 알림 채널을 조회합니다. 없으면 ErrChannelNotFound를 반환합니다.
func (s *Store) FindChannel(ctx context.Context, ownerID uint) (*NotificationChannel, error) {
	var ch NotificationChannel
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.System, "알림 채널 조회에 실패했습니다")
	}
	return &ch, nil
}

func findProduct(db *gorm.DB, ownerID, productID uint) (*TrackedProduct, error) {
	var p TrackedProduct
	if err := db.Where("id = ? AND owner_id = ?", productID, ownerID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.System, "상품 조회에 실패했습니다")
	}
	return &p, nil
}

func deleteCascade(tx *gorm.DB, productID uint) error {
	if err := tx.Where("product_id = ?", productID).Delete(&PriceAlert{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.System, "알림 이력 삭제에 실패했습니다")
	}
	if err := tx.Where("product_id = ?", productID).Delete(&PricePoint{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.System, "가격 이력 삭제에 실패했습니다")
	}

	res := tx.Delete(&TrackedProduct{}, productID)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.System, "상품 삭제에 실패했습니다")
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// lockingClause MySQL에서는 행 잠금(SELECT ... FOR UPDATE)을 건다. SQLite는 커넥션 단위로 직렬화된다.
func lockingClause(tx *gorm.DB) []clause.Expression {
	if tx.Dialector.Name() == config.DriverMySQL {
		return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
	}
	return nil
}
