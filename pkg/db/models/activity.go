package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// Activity is an append-only audit record of a domain action.
type Activity struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Type          enums.ActivityType `gorm:"column:type;type:text;not null;index"`
	ActorUserID   uuid.UUID          `gorm:"column:actor_user_id;type:uuid;not null"`
	CooperativeID *uuid.UUID         `gorm:"column:cooperative_id;type:uuid;index"`
	EntityID      *string            `gorm:"column:entity_id"`
	Details       json.RawMessage    `gorm:"column:details;type:jsonb"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}
