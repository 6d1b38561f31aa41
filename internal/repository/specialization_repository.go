package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// SpecializationRepository reads subject specializations and room types.
type SpecializationRepository struct {
	db *sqlx.DB
}

func NewSpecializationRepository(db *sqlx.DB) *SpecializationRepository {
	return &SpecializationRepository{db: db}
}

func (r *SpecializationRepository) List(ctx context.Context) ([]models.Specialization, error) {
	const query = `SELECT id, name, room_type_id FROM specializations ORDER BY name`
	var specs []models.Specialization
	if err := r.db.SelectContext(ctx, &specs, query); err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	return specs, nil
}

func (r *SpecializationRepository) ListRoomTypes(ctx context.Context) ([]models.RoomType, error) {
	const query = `SELECT id, name FROM room_types ORDER BY name`
	var types []models.RoomType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	return types, nil
}
