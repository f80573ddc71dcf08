package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-storefront/internal/feature/order"
	"go-gin-storefront/internal/feature/product"
	"go-gin-storefront/internal/feature/user"
)

// Migrate 建表（db.autoMigrate 开启时由 main 调用）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.UserModel{}, &product.ProductModel{}, &order.OrderModel{})
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 时按驱动错误文本兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
