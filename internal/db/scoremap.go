package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/oggyb/cinemood/internal/db/jsoncodec"
)

// ScoreMap maps a categorical key (MBTI code, weather condition, emotion tag)
// to an affinity score in [0, MaxScore].
//
// The column type and bound expression are chosen per engine through
// jsoncodec, so a map written on SQLite reads back exactly as it would on
// PostgreSQL JSONB or MySQL JSON. A nil map is stored as {} and always reads
// back as an empty, non-nil map.
type ScoreMap map[string]float64

// GormDataType implements schema.GormDataTypeInterface.
func (ScoreMap) GormDataType() string {
	return "json"
}

// GormDBDataType implements migrator.GormDataTypeInterface.
func (ScoreMap) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsoncodec.For(db).ColumnType()
}

// GormValue implements gorm.Valuer; it binds the value with the engine's codec.
func (m ScoreMap) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	expr, err := jsoncodec.For(db).Encode(m.orEmpty())
	if err != nil {
		_ = db.AddError(err)
		return clause.Expr{SQL: "NULL"}
	}
	return expr
}

// Value implements driver.Valuer for raw queries outside gorm's statement builder.
func (m ScoreMap) Value() (driver.Value, error) {
	return jsoncodec.Marshal(m.orEmpty())
}

// Scan implements sql.Scanner.
func (m *ScoreMap) Scan(value any) error {
	out := map[string]float64{}
	if err := jsoncodec.Unmarshal(value, &out); err != nil {
		return err
	}
	if out == nil {
		out = map[string]float64{}
	}
	*m = out
	return nil
}

// Validate checks that keys are non-empty and scores stay within bounds.
func (m ScoreMap) Validate(field string) error {
	for k, v := range m {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: %s has an empty key", ErrOutOfBounds, field)
		}
		if math.IsNaN(v) || v < 0 || v > MaxScore {
			return fmt.Errorf("%w: %s[%s]=%v not in [0, %v]", ErrOutOfBounds, field, k, v, MaxScore)
		}
	}
	return nil
}

func (m ScoreMap) orEmpty() map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
